package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxRecipeNameLength = 200
	minCookingTime      = 1
	minIngredientAmount = 1
)

// IngredientAmount is one requested recipe line
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

// RecipeInput carries a create or update request. Nil scalar fields are left
// untouched on update; tags and ingredients always replace the stored ones.
type RecipeInput struct {
	Name        *string
	Text        *string
	Image       *string
	CookingTime *int
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// RecipeFilter narrows a recipe listing. ViewerID is the requesting user,
// 0 for anonymous requests.
type RecipeFilter struct {
	AuthorID  *uint
	TagSlugs  []string
	ViewerID  uint
	Favorited bool
	InCart    bool
}

type RecipeService interface {
	// ListRecipes returns one page of recipes ordered by name plus the total count
	ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, authorID uint, input RecipeInput) (*models.Recipe, error)
	// UpdateRecipe changes a recipe owned by actorID
	UpdateRecipe(ctx context.Context, id, actorID uint, input RecipeInput) (*models.Recipe, error)
	// DeleteRecipe removes a recipe owned by actorID with its lines, tags,
	// favorites and cart entries
	DeleteRecipe(ctx context.Context, id, actorID uint) error
	// ListByAuthor returns up to limit recipes of the author, all if limit <= 0
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthor(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

type recipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) RecipeService {
	return &recipeService{db: db}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (s *recipeService) filtered(ctx context.Context, filter RecipeFilter) *gorm.DB {
	db := s.db.WithContext(ctx)
	query := db.Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.Favorited {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID))
	}
	if filter.InCart {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.CartEntry{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID))
	}
	return query
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := preloadRecipe(s.filtered(ctx, filter)).
		Order("recipes.name").Order("recipes.id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func validateRecipeInput(input RecipeInput, create bool) error {
	v := &ValidationError{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			v.Add("name", "name is required")
		} else if len([]rune(name)) > maxRecipeNameLength {
			v.Add("name", "name is too long")
		}
	} else if create {
		v.Add("name", "name is required")
	}

	if input.Text != nil {
		if strings.TrimSpace(*input.Text) == "" {
			v.Add("text", "text is required")
		}
	} else if create {
		v.Add("text", "text is required")
	}

	if input.CookingTime != nil {
		if *input.CookingTime < minCookingTime {
			v.Add("cooking_time", "cooking time must be at least 1 minute")
		}
	} else if create {
		v.Add("cooking_time", "cooking time is required")
	}

	if len(input.TagIDs) == 0 {
		v.Add("tags", "at least one tag is required")
	}
	seenTags := make(map[uint]bool, len(input.TagIDs))
	for _, id := range input.TagIDs {
		if seenTags[id] {
			v.Add("tags", "tags must not repeat")
			break
		}
		seenTags[id] = true
	}

	if len(input.Ingredients) == 0 {
		v.Add("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[uint]bool, len(input.Ingredients))
	for _, line := range input.Ingredients {
		if line.Amount < minIngredientAmount {
			v.Add("ingredients", "ingredient amount must be at least 1")
		}
		if seenIngredients[line.IngredientID] {
			v.Add("ingredients", "ingredients must not repeat")
		}
		seenIngredients[line.IngredientID] = true
	}

	return v.OrNil()
}

func checkIngredientsExist(tx *gorm.DB, lines []IngredientAmount) error {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}

	var found []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}

	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	v := &ValidationError{}
	for _, id := range ids {
		if !known[id] {
			v.Add("ingredients", "unknown ingredient id "+uintToString(id))
		}
	}
	return v
}

// mergeRecipeFields copies the scalar fields present in input onto recipe
func mergeRecipeFields(recipe *models.Recipe, input RecipeInput) {
	if input.Name != nil {
		recipe.Name = strings.TrimSpace(*input.Name)
	}
	if input.Text != nil {
		recipe.Text = *input.Text
	}
	if input.Image != nil {
		recipe.Image = *input.Image
	}
	if input.CookingTime != nil {
		recipe.CookingTime = *input.CookingTime
	}
}

// replaceRecipeLines swaps the tags and ingredient lines of a stored recipe
func replaceRecipeLines(tx *gorm.DB, recipe *models.Recipe, input RecipeInput) error {
	tags, err := findTags(tx, input.TagIDs)
	if err != nil {
		return err
	}
	if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
		return err
	}

	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return err
	}
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}

	lines := make([]models.RecipeIngredient, 0, len(input.Ingredients))
	for _, line := range input.Ingredients {
		lines = append(lines, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return tx.Omit(clause.Associations).Create(&lines).Error
}

func (s *recipeService) CreateRecipe(ctx context.Context, authorID uint, input RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(input, true); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{AuthorID: &authorID}
	mergeRecipeFields(recipe, input)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return replaceRecipeLines(tx, recipe, input)
	})
	if err != nil {
		return nil, err
	}

	log.WithField("recipe_id", recipe.ID).WithField("author_id", authorID).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

// ownedRecipe loads a recipe and checks that actorID wrote it
func ownedRecipe(tx *gorm.DB, id, actorID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID == nil || *recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id, actorID uint, input RecipeInput) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := ownedRecipe(tx, id, actorID)
		if err != nil {
			return err
		}
		if err := validateRecipeInput(input, false); err != nil {
			return err
		}

		mergeRecipeFields(recipe, input)
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		return replaceRecipeLines(tx, recipe, input)
	})
	if err != nil {
		return nil, err
	}

	log.WithField("recipe_id", id).Info("Recipe updated")
	return s.GetRecipe(ctx, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id, actorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := ownedRecipe(tx, id, actorID)
		if err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.CartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return err
		}

		log.WithField("recipe_id", id).Info("Recipe deleted")
		return nil
	})
}

func (s *recipeService) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("name").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *recipeService) CountByAuthor(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
