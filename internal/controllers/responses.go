package controllers

import (
	"context"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
)

// UserResponse is the public profile of a user
type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeIngredientResponse is one ingredient line of a recipe
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           *UserResponse              `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShortResponse is the compact form used by relation endpoints and subscriptions
type RecipeShortResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is a followed author with a preview of their recipes
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func shortRecipe(recipe *models.Recipe) RecipeShortResponse {
	return RecipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func userResponse(user *models.User, subscribed bool) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

// presenter renders models with the per-viewer flags. Flags for a page are
// loaded with one query per relation.
type presenter struct {
	favorites     services.RelationService
	cart          services.RelationService
	subscriptions services.RelationService
}

func (p *presenter) users(ctx context.Context, viewer uint, users []models.User) ([]UserResponse, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := p.subscriptions.Marked(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i], subscribed[users[i].ID]))
	}
	return out, nil
}

func (p *presenter) user(ctx context.Context, viewer uint, user *models.User) (UserResponse, error) {
	out, err := p.users(ctx, viewer, []models.User{*user})
	if err != nil {
		return UserResponse{}, err
	}
	return out[0], nil
}

func (p *presenter) recipes(ctx context.Context, viewer uint, recipes []models.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		if r.AuthorID != nil {
			authorIDs = append(authorIDs, *r.AuthorID)
		}
	}

	favorited, err := p.favorites.Marked(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.cart.Marked(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := p.subscriptions.Marked(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		resp := RecipeResponse{
			ID:               r.ID,
			Tags:             r.Tags,
			Ingredients:      make([]RecipeIngredientResponse, 0, len(r.Ingredients)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		if resp.Tags == nil {
			resp.Tags = []models.Tag{}
		}
		if r.Author != nil {
			author := userResponse(r.Author, subscribed[r.Author.ID])
			resp.Author = &author
		}
		for _, line := range r.Ingredients {
			resp.Ingredients = append(resp.Ingredients, RecipeIngredientResponse{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		out = append(out, resp)
	}
	return out, nil
}

func (p *presenter) recipe(ctx context.Context, viewer uint, recipe *models.Recipe) (RecipeResponse, error) {
	out, err := p.recipes(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return RecipeResponse{}, err
	}
	return out[0], nil
}
