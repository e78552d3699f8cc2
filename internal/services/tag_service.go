package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
)

var (
	slugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

type TagService interface {
	// ListTags returns every tag ordered by name
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	// GetTagsByID loads the given tags; unknown ids are reported as a validation error
	GetTagsByID(ctx context.Context, ids []uint) ([]models.Tag, error)
}

type tagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) TagService {
	return &tagService{db: db}
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// ValidateTag normalizes and checks a tag before it is stored
func ValidateTag(tag *models.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	tag.Slug = strings.TrimSpace(tag.Slug)
	tag.Color = strings.ToUpper(strings.TrimSpace(tag.Color))

	v := &ValidationError{}
	if tag.Name == "" {
		v.Add("name", "name is required")
	}
	if !slugPattern.MatchString(tag.Slug) {
		v.Add("slug", "slug may contain only latin letters, digits, - and _")
	}
	if !colorPattern.MatchString(tag.Color) {
		v.Add("color", "color must be a hex value like #E26C2D")
	}
	return v.OrNil()
}

func (s *tagService) CreateTag(ctx context.Context, tag *models.Tag) error {
	if err := ValidateTag(tag); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("slug", "a tag with this name or slug already exists")
		}
		return err
	}
	return nil
}

func (s *tagService) GetTagsByID(ctx context.Context, ids []uint) ([]models.Tag, error) {
	return findTags(s.db.WithContext(ctx), ids)
}

func findTags(db *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		known := make(map[uint]bool, len(tags))
		for _, tag := range tags {
			known[tag.ID] = true
		}
		v := &ValidationError{}
		for _, id := range ids {
			if !known[id] {
				v.Add("tags", "unknown tag id "+uintToString(id))
			}
		}
		return nil, v
	}
	return tags, nil
}
