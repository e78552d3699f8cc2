package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
)

// RelationService manages a (user, target) pair table such as favorites,
// the shopping cart or subscriptions.
type RelationService interface {
	Add(ctx context.Context, userID, targetID uint) error
	Remove(ctx context.Context, userID, targetID uint) error
	Exists(ctx context.Context, userID, targetID uint) (bool, error)
	// Marked reports which of targetIDs the user is related to. Anonymous
	// users (userID 0) have no relations.
	Marked(ctx context.Context, userID uint, targetIDs []uint) (map[uint]bool, error)
}

// RelationConfig describes one pair table
type RelationConfig[T any] struct {
	// TargetColumn is the column holding the target id, e.g. recipe_id
	TargetColumn string
	New          func(userID, targetID uint) *T
	// Check runs before a pair is added
	Check func(ctx context.Context, db *gorm.DB, userID, targetID uint) error
}

type relationService[T any] struct {
	db  *gorm.DB
	cfg RelationConfig[T]
}

func NewRelationService[T any](db *gorm.DB, cfg RelationConfig[T]) RelationService {
	return &relationService[T]{db: db, cfg: cfg}
}

func (s *relationService[T]) pair(userID, targetID uint) map[string]any {
	return map[string]any{"user_id": userID, s.cfg.TargetColumn: targetID}
}

func (s *relationService[T]) Add(ctx context.Context, userID, targetID uint) error {
	db := s.db.WithContext(ctx)
	if s.cfg.Check != nil {
		if err := s.cfg.Check(ctx, db, userID, targetID); err != nil {
			return err
		}
	}

	exists, err := s.Exists(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}

	if err := db.Create(s.cfg.New(userID, targetID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *relationService[T]) Remove(ctx context.Context, userID, targetID uint) error {
	result := s.db.WithContext(ctx).Where(s.pair(userID, targetID)).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRelationNotFound
	}
	return nil
}

func (s *relationService[T]) Exists(ctx context.Context, userID, targetID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where(s.pair(userID, targetID)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *relationService[T]) Marked(ctx context.Context, userID uint, targetIDs []uint) (map[uint]bool, error) {
	marked := make(map[uint]bool)
	if userID == 0 || len(targetIDs) == 0 {
		return marked, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ?", userID).
		Where(s.cfg.TargetColumn+" IN ?", targetIDs).
		Pluck(s.cfg.TargetColumn, &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}

func recipeMustExist(ctx context.Context, db *gorm.DB, _, recipeID uint) error {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func NewFavoriteService(db *gorm.DB) RelationService {
	return NewRelationService(db, RelationConfig[models.Favorite]{
		TargetColumn: "recipe_id",
		New: func(userID, recipeID uint) *models.Favorite {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		Check: recipeMustExist,
	})
}

func NewCartService(db *gorm.DB) RelationService {
	return NewRelationService(db, RelationConfig[models.CartEntry]{
		TargetColumn: "recipe_id",
		New: func(userID, recipeID uint) *models.CartEntry {
			return &models.CartEntry{UserID: userID, RecipeID: recipeID}
		},
		Check: recipeMustExist,
	})
}

func NewSubscriptionService(db *gorm.DB) RelationService {
	return NewRelationService(db, RelationConfig[models.Subscription]{
		TargetColumn: "author_id",
		New: func(userID, authorID uint) *models.Subscription {
			return &models.Subscription{UserID: userID, AuthorID: authorID}
		},
		Check: func(ctx context.Context, db *gorm.DB, userID, authorID uint) error {
			if userID == authorID {
				return ErrSelfSubscription
			}
			var count int64
			if err := db.Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrUserNotFound
			}
			return nil
		},
	})
}
