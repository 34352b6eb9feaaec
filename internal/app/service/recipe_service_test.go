package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recipeFixture struct {
	svc   *RecipeService
	store *repository.MemoryStore
	alice *model.User
	bob   *model.User
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	alice := &model.User{ID: "u-alice", Username: "alice", Email: "alice@example.com"}
	bob := &model.User{ID: "u-bob", Username: "bob", Email: "bob@example.com"}
	require.NoError(t, store.Users().Create(ctx, alice))
	require.NoError(t, store.Users().Create(ctx, bob))

	svc := NewRecipeService(store.Recipes(), store.Users())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return &recipeFixture{svc: svc, store: store, alice: alice, bob: bob}
}

func pancakes() CreateRecipeRequest {
	return CreateRecipeRequest{
		Title:        "Fluffy Pancakes",
		Ingredients:  json.RawMessage(`["flour", " milk ", "eggs"]`),
		Instructions: "Mix and fry.",
		Category:     "Breakfast",
		PhotoURL:     "https://example.com/p.jpg",
		CookingTime:  json.RawMessage(`20`),
	}
}

func strPtr(s string) *string { return &s }

func TestRecipeService_Create(t *testing.T) {
	f := newRecipeFixture(t)

	rc, err := f.svc.CreateRecipe(context.Background(), f.alice, pancakes())
	require.NoError(t, err)
	assert.NotEmpty(t, rc.ID)
	assert.Equal(t, "fluffy-pancakes", rc.Slug)
	assert.Equal(t, []string{"flour", "milk", "eggs"}, rc.Ingredients)
	assert.Equal(t, 20, rc.CookingTime)
	assert.Equal(t, f.alice.ID, rc.CreatedBy)
	require.NotNil(t, rc.Author)
	assert.Equal(t, "alice", rc.Author.Username)
}

func TestRecipeService_CreateFlexibleInputs(t *testing.T) {
	f := newRecipeFixture(t)
	req := pancakes()
	req.Ingredients = json.RawMessage(`"salt, pepper,, oil"`)
	req.CookingTime = json.RawMessage(`"25 mins"`)

	rc, err := f.svc.CreateRecipe(context.Background(), f.alice, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"salt", "pepper", "oil"}, rc.Ingredients)
	assert.Equal(t, 25, rc.CookingTime)
}

func TestRecipeService_CreateValidation(t *testing.T) {
	f := newRecipeFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateRecipeRequest)
	}{
		{"missing title", func(r *CreateRecipeRequest) { r.Title = "  " }},
		{"missing photo", func(r *CreateRecipeRequest) { r.PhotoURL = "" }},
		{"missing ingredients", func(r *CreateRecipeRequest) { r.Ingredients = nil }},
		{"empty ingredients", func(r *CreateRecipeRequest) { r.Ingredients = json.RawMessage(`[]`) }},
		{"ingredients wrong type", func(r *CreateRecipeRequest) { r.Ingredients = json.RawMessage(`{"a":1}`) }},
		{"missing cooking time", func(r *CreateRecipeRequest) { r.CookingTime = json.RawMessage(`null`) }},
		{"cooking time without digits", func(r *CreateRecipeRequest) { r.CookingTime = json.RawMessage(`"abc"`) }},
		{"zero cooking time", func(r *CreateRecipeRequest) { r.CookingTime = json.RawMessage(`0`) }},
		{"negative cooking time", func(r *CreateRecipeRequest) { r.CookingTime = json.RawMessage(`-5`) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pancakes()
			tt.mutate(&req)
			_, err := f.svc.CreateRecipe(context.Background(), f.alice, req)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestRecipeService_ListAndGet(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)
	soup := pancakes()
	soup.Title = "Tomato Soup"
	soup.Category = "Lunch"
	_, err = f.svc.CreateRecipe(ctx, f.bob, soup)
	require.NoError(t, err)

	all, err := f.svc.ListRecipes(ctx, model.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, rc := range all {
		require.NotNil(t, rc.Author)
		assert.Equal(t, rc.CreatedBy, rc.Author.ID)
	}

	lunch, err := f.svc.ListRecipes(ctx, model.RecipeFilter{Category: "Lunch"})
	require.NoError(t, err)
	require.Len(t, lunch, 1)
	assert.Equal(t, "bob", lunch[0].Author.Username)

	got, err := f.svc.GetRecipe(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fluffy Pancakes", got.Title)
	assert.Equal(t, "alice", got.Author.Username)

	_, err = f.svc.GetRecipe(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecipeService_UpdateByOwner(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	rc, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	updated, err := f.svc.UpdateRecipe(ctx, f.alice.ID, rc.ID, UpdateRecipeRequest{
		Title:       strPtr("Vegan Pancakes"),
		CookingTime: json.RawMessage(`"15 min"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Vegan Pancakes", updated.Title)
	assert.Equal(t, "vegan-pancakes", updated.Slug)
	assert.Equal(t, 15, updated.CookingTime)
	assert.Equal(t, rc.Ingredients, updated.Ingredients)
	assert.Equal(t, f.alice.ID, updated.CreatedBy)

	_, err = f.svc.UpdateRecipe(ctx, f.alice.ID, rc.ID, UpdateRecipeRequest{Title: strPtr("")})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRecipeService_NonOwnerCannotMutate(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	rc, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	// Invalid input from a non-owner is still rejected as an ownership failure.
	_, err = f.svc.UpdateRecipe(ctx, f.bob.ID, rc.ID, UpdateRecipeRequest{Title: strPtr("")})
	assert.ErrorIs(t, err, common.ErrForbidden)

	err = f.svc.DeleteRecipe(ctx, f.bob.ID, rc.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	assert.ErrorIs(t, f.svc.AuthorizeMutation(ctx, f.bob.ID, rc.ID), common.ErrForbidden)
	assert.ErrorIs(t, f.svc.AuthorizeMutation(ctx, f.bob.ID, "missing"), common.ErrNotFound)
	assert.NoError(t, f.svc.AuthorizeMutation(ctx, f.alice.ID, rc.ID))

	stored, err := f.store.Recipes().FindByID(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fluffy Pancakes", stored.Title)
}

func TestRecipeService_Delete(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	rc, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(ctx, f.alice.ID, rc.ID))

	_, err = f.svc.GetRecipe(ctx, rc.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = f.svc.DeleteRecipe(ctx, f.alice.ID, rc.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
