// Command seed fills the database with demo users, groups, posts, comments and follows.
//
// With -add-group it only creates the named groups, for example
//
//	seed -add-group "cats=Коты" -add-group "travel=Путешествия"
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/seed"
	"yatube/internal/service"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 150, "Number of posts to create")
	comments := flag.Int("comments", 3, "Maximum comments per post")
	follows := flag.Int("follows", 5, "Maximum authors each user follows")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")

	var newGroups []models.Group
	flag.Func("add-group", "Create a group given as slug=Title (repeatable)", func(v string) error {
		slug, title, ok := strings.Cut(v, "=")
		if !ok {
			return errors.New("expected slug=Title")
		}
		newGroups = append(newGroups, models.Group{Slug: strings.TrimSpace(slug), Title: title})
		return nil
	})
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if len(newGroups) > 0 {
		// Redis is optional; with it the running site drops its cached group list.
		rdb := cache.Connect(cfg.RedisURL)
		if rdb != nil {
			defer func() { _ = rdb.Close() }()
		}
		groups := service.NewGroupService(repository.NewGroupRepository(db), rdb)
		for i := range newGroups {
			if err := groups.Create(context.Background(), &newGroups[i]); err != nil {
				log.Fatalf("❌ Group %q: %v", newGroups[i].Slug, err)
			}
			log.Printf("✅ Created group %s (/group/%s/)", newGroups[i].Title, newGroups[i].Slug)
		}
		return
	}

	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	_, err = seed.NewSeeder(db).Run(seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		FollowsPerUser:  *follows,
		ShouldClean:     *shouldClean,
		Seed:            *randSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
