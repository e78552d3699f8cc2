package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIngredientsByPrefix(t *testing.T) {
	db := setupTestDB(t)
	for _, name := range []string{"sugar", "salt", "Sour cream", "flour", "50% cream"} {
		require.NoError(t, db.Create(&models.Ingredient{Name: name, MeasurementUnit: "g"}).Error)
	}
	svc := NewIngredientService(db)
	ctx := context.Background()

	testCases := []struct {
		prefix   string
		expected []string
	}{
		{prefix: "", expected: []string{"50% cream", "Sour cream", "flour", "salt", "sugar"}},
		{prefix: "s", expected: []string{"Sour cream", "salt", "sugar"}},
		{prefix: "SU", expected: []string{"sugar"}},
		{prefix: "50%", expected: []string{"50% cream"}},
		{prefix: "5_", expected: []string{}},
		{prefix: "cream", expected: []string{}},
	}

	for _, tt := range testCases {
		t.Run("prefix "+tt.prefix, func(t *testing.T) {
			ingredients, err := svc.ListIngredients(ctx, tt.prefix)
			require.NoError(t, err)

			names := make([]string, 0, len(ingredients))
			for _, i := range ingredients {
				names = append(names, i.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}

	_, err := svc.GetIngredient(ctx, 999)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestCreateTag(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTagService(db)
	ctx := context.Background()

	tag := &models.Tag{Name: " Lunch ", Color: "#aabbcc", Slug: "lunch"}
	require.NoError(t, svc.CreateTag(ctx, tag))
	assert.Equal(t, "Lunch", tag.Name)
	assert.Equal(t, "#AABBCC", tag.Color)

	var verr *ValidationError
	err := svc.CreateTag(ctx, &models.Tag{Name: "Lunch again", Color: "#000000", Slug: "lunch"})
	require.ErrorAs(t, err, &verr)

	err = svc.CreateTag(ctx, &models.Tag{Name: "Bad", Color: "red", Slug: "bad slug"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "color")
	assert.Contains(t, verr.Fields, "slug")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	_, err = svc.GetTag(ctx, 999)
	assert.ErrorIs(t, err, ErrTagNotFound)

	_, err = svc.GetTagsByID(ctx, []uint{tag.ID, 999})
	require.ErrorAs(t, err, &verr)
}

func TestClientService(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner")
	svc := NewClientService(db)
	ctx := context.Background()

	client := &models.OAuthClient{Name: "cli", UserID: owner.ID}
	secret, err := svc.RegisterClient(ctx, client)
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.NotEqual(t, secret, client.Secret)
	assert.True(t, client.VerifyPassword(secret))
	assert.Equal(t, defaultClientGrants, client.GrantTypes)

	clients, err := svc.GetClientsByUserID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	assert.ErrorIs(t, svc.DeleteClient(ctx, client.ID, owner.ID+1), ErrClientNotFound)
	require.NoError(t, svc.DeleteClient(ctx, client.ID, owner.ID))

	_, err = svc.GetClientByID(ctx, client.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)
}
