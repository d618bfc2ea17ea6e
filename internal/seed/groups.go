package seed

import (
	_ "embed"
	"fmt"

	"yatube/internal/models"
	"yatube/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures/groups.yml
var groupsYAML []byte

// GroupFixture is a group definition from fixtures/groups.yml.
type GroupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// LoadGroupFixtures parses the embedded group fixtures.
func LoadGroupFixtures() ([]GroupFixture, error) {
	return parseGroupFixtures(groupsYAML)
}

func parseGroupFixtures(raw []byte) ([]GroupFixture, error) {
	var doc struct {
		Groups []GroupFixture `yaml:"groups"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse group fixtures: %w", err)
	}
	for _, g := range doc.Groups {
		if g.Title == "" {
			return nil, fmt.Errorf("group fixture %q has no title", g.Slug)
		}
		if err := validation.ValidateSlug(g.Slug); err != nil {
			return nil, fmt.Errorf("group fixture %q: %w", g.Slug, err)
		}
	}
	return doc.Groups, nil
}

// Groups upserts the fixture groups by slug and returns them.
func Groups(db *gorm.DB) ([]models.Group, error) {
	fixtures, err := LoadGroupFixtures()
	if err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, len(fixtures))
	for _, item := range fixtures {
		group := models.Group{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(&group).Error; err != nil {
			return nil, fmt.Errorf("seed group %s: %w", item.Slug, err)
		}
		if group.ID == 0 {
			if err := db.Where("slug = ?", item.Slug).First(&group).Error; err != nil {
				return nil, fmt.Errorf("reload group %s: %w", item.Slug, err)
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}
