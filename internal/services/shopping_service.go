package services

import (
	"context"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/shopping"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	shoppingListsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_shopping_lists_generated_total",
		Help: "Number of shopping lists rendered for download",
	})
	shoppingListItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodgram_shopping_list_items",
		Help:    "Distinct ingredients per generated shopping list",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})
)

type ShoppingListService interface {
	// CartLines returns every ingredient line of the recipes in the user's
	// cart, in the order the recipes were added
	CartLines(ctx context.Context, userID uint) ([]shopping.Line, error)
	// BuildShoppingList aggregates the cart of userID
	BuildShoppingList(ctx context.Context, userID uint) (*shopping.List, error)
}

type shoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

func (s *shoppingListService) CartLines(ctx context.Context, userID uint) ([]shopping.Line, error) {
	var lines []shopping.Line
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("ri.ingredient_id AS ingredient_id, i.name AS name, i.measurement_unit AS unit, ri.amount AS amount").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Joins("JOIN cart_entries c ON c.recipe_id = ri.recipe_id").
		Where("c.user_id = ?", userID).
		Order("c.id").Order("ri.id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *shoppingListService) BuildShoppingList(ctx context.Context, userID uint) (*shopping.List, error) {
	lines, err := s.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := shopping.Aggregate(lines)
	shoppingListsGenerated.Inc()
	shoppingListItems.Observe(float64(list.Len()))

	log.WithField("user_id", userID).WithField("items", list.Len()).Debug("Shopping list built")
	return list, nil
}
