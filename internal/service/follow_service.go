package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type FollowService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewFollowService(users repository.UserRepository, follows repository.FollowRepository) *FollowService {
	return &FollowService{users: users, follows: follows}
}

// Follow subscribes userID to the named author. Following yourself or an
// author you already follow changes nothing. Returns the author.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) (*models.User, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return author, models.NewUnauthorizedError("Authentication required")
	}
	if author.ID == userID {
		return author, nil
	}
	exists, err := s.follows.Exists(ctx, userID, author.ID)
	if err != nil || exists {
		return author, err
	}
	if err := s.follows.Create(ctx, &models.Follow{UserID: userID, AuthorID: author.ID}); err != nil {
		// A concurrent request created the same edge.
		if models.IsValidation(err) {
			return author, nil
		}
		return author, err
	}
	observability.FollowEvents.WithLabelValues("follow").Inc()
	return author, nil
}

// Unfollow removes the subscription if present.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) (*models.User, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return author, models.NewUnauthorizedError("Authentication required")
	}
	if author.ID == userID {
		return author, nil
	}
	deleted, err := s.follows.Delete(ctx, userID, author.ID)
	if err != nil {
		return author, err
	}
	if deleted {
		observability.FollowEvents.WithLabelValues("unfollow").Inc()
	}
	return author, nil
}
