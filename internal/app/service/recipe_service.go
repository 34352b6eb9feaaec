package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/repository"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/logging"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type RecipeService struct {
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

func NewRecipeService(recipeRepo repository.RecipeRepository, userRepo repository.UserRepository) *RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

type CreateRecipeRequest struct {
	Title        string          `json:"title"`
	Ingredients  json.RawMessage `json:"ingredients"` // list or comma-separated string
	Instructions string          `json:"instructions"`
	Category     string          `json:"category"`
	PhotoURL     string          `json:"photoUrl"`
	CookingTime  json.RawMessage `json:"cookingTime"` // number or "25 mins"
}

// UpdateRecipeRequest carries a partial update; nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Title        *string         `json:"title,omitempty"`
	Ingredients  json.RawMessage `json:"ingredients,omitempty"`
	Instructions *string         `json:"instructions,omitempty"`
	Category     *string         `json:"category,omitempty"`
	PhotoURL     *string         `json:"photoUrl,omitempty"`
	CookingTime  json.RawMessage `json:"cookingTime,omitempty"`
}

func (s *RecipeService) CreateRecipe(ctx context.Context, actor *model.User, req CreateRecipeRequest) (*model.Recipe, error) {
	if actor == nil {
		return nil, common.ErrUnauthorized
	}

	title := strings.TrimSpace(req.Title)
	instructions := strings.TrimSpace(req.Instructions)
	category := strings.TrimSpace(req.Category)
	photoURL := strings.TrimSpace(req.PhotoURL)
	if title == "" || instructions == "" || category == "" || photoURL == "" ||
		isAbsent(req.Ingredients) || isAbsent(req.CookingTime) {
		return nil, common.ValidationError("Please fill all the fields")
	}

	ingredients, err := parseIngredients(req.Ingredients)
	if err != nil {
		return nil, err
	}
	if len(ingredients) == 0 {
		return nil, common.ValidationError("Please fill all the fields")
	}
	cookingTime, err := parseCookingTime(req.CookingTime)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	recipe := &model.Recipe{
		ID:           uuid.NewString(),
		Title:        title,
		Slug:         slug.Make(title),
		Ingredients:  ingredients,
		Instructions: instructions,
		Category:     category,
		PhotoURL:     photoURL,
		CookingTime:  cookingTime,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, common.Errorf("failed to create recipe: %w", err)
	}
	recipe.Author = actor.Author()

	logging.From(ctx).Info("recipe_created", slog.String("recipe_id", recipe.ID), slog.String("user_id", actor.ID))
	return recipe, nil
}

func (s *RecipeService) ListRecipes(ctx context.Context, filter model.RecipeFilter) ([]model.Recipe, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Author = strings.TrimSpace(filter.Author)
	filter.Search = strings.TrimSpace(filter.Search)

	recipes, err := s.recipeRepo.List(ctx, filter)
	if err != nil {
		return nil, common.Errorf("failed to list recipes: %w", err)
	}
	s.attachAuthors(ctx, recipes)
	return recipes, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, recipeLookupError(err)
	}
	s.attachAuthor(ctx, recipe)
	return recipe, nil
}

// UpdateRecipe applies a partial update. Existence and ownership are checked
// before any field is validated or written.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, id string, req UpdateRecipeRequest) (*model.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, common.ValidationError("title cannot be empty")
		}
		recipe.Title = title
		recipe.Slug = slug.Make(title)
	}
	if req.Instructions != nil {
		instructions := strings.TrimSpace(*req.Instructions)
		if instructions == "" {
			return nil, common.ValidationError("instructions cannot be empty")
		}
		recipe.Instructions = instructions
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, common.ValidationError("category cannot be empty")
		}
		recipe.Category = category
	}
	if req.PhotoURL != nil {
		recipe.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}
	if !isAbsent(req.Ingredients) {
		ingredients, err := parseIngredients(req.Ingredients)
		if err != nil {
			return nil, err
		}
		// An empty list keeps the current ingredients.
		if len(ingredients) > 0 {
			recipe.Ingredients = ingredients
		}
	}
	if !isAbsent(req.CookingTime) {
		cookingTime, err := parseCookingTime(req.CookingTime)
		if err != nil {
			return nil, err
		}
		recipe.CookingTime = cookingTime
	}
	recipe.UpdatedAt = s.now().UTC()

	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, recipeLookupError(err)
	}
	s.attachAuthor(ctx, recipe)
	return recipe, nil
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, id string) error {
	if _, err := s.ownedRecipe(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		return recipeLookupError(err)
	}
	logging.From(ctx).Info("recipe_deleted", slog.String("recipe_id", id), slog.String("user_id", actorID))
	return nil
}

// AuthorizeMutation reports whether actorID may change recipe id, with the
// same NotFound and Forbidden errors UpdateRecipe and DeleteRecipe return.
func (s *RecipeService) AuthorizeMutation(ctx context.Context, actorID, id string) error {
	_, err := s.ownedRecipe(ctx, actorID, id)
	return err
}

// ownedRecipe loads the recipe and confirms actorID owns it.
func (s *RecipeService) ownedRecipe(ctx context.Context, actorID, id string) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, recipeLookupError(err)
	}
	if !recipe.IsOwnedBy(actorID) {
		logging.From(ctx).Warn("ownership_denied", slog.String("recipe_id", id), slog.String("user_id", actorID))
		return nil, &common.ClientError{Kind: common.ErrForbidden, Message: "Not authorized"}
	}
	return recipe, nil
}

func recipeLookupError(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return &common.ClientError{Kind: common.ErrNotFound, Message: "Recipe not found"}
	}
	return common.Errorf("failed to load recipe: %w", err)
}

func (s *RecipeService) attachAuthor(ctx context.Context, recipe *model.Recipe) {
	recipes := []model.Recipe{*recipe}
	s.attachAuthors(ctx, recipes)
	recipe.Author = recipes[0].Author
}

// attachAuthors fills Author from the user store. A lookup failure is logged
// and leaves authors unset rather than failing the read.
func (s *RecipeService) attachAuthors(ctx context.Context, recipes []model.Recipe) {
	if len(recipes) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(recipes))
	ids := make([]string, 0, len(recipes))
	for _, rc := range recipes {
		if _, ok := seen[rc.CreatedBy]; ok {
			continue
		}
		seen[rc.CreatedBy] = struct{}{}
		ids = append(ids, rc.CreatedBy)
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		logging.From(ctx).Warn("author_lookup_failed", slog.String("err", err.Error()))
		return
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range recipes {
		if u, ok := byID[recipes[i].CreatedBy]; ok {
			recipes[i].Author = u.Author()
		}
	}
}
