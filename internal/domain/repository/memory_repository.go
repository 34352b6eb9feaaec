package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"
)

// MemoryStore keeps users and recipes in process memory. It backs the
// "memory" store driver and the service and API tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]model.User
	recipes map[string]model.Recipe
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]model.User),
		recipes: make(map[string]model.Recipe),
	}
}

func (s *MemoryStore) Users() UserRepository { return &memoryUserRepository{s} }

func (s *MemoryStore) Recipes() RecipeRepository { return &memoryRecipeRepository{s} }

type memoryUserRepository struct {
	s *MemoryStore
}

func (r *memoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return fmt.Errorf("user id %s already exists: %w", user.ID, common.ErrConflict)
	}
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []model.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *memoryUserRepository) find(match func(model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

type memoryRecipeRepository struct {
	s *MemoryStore
}

func (r *memoryRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.recipes[recipe.ID]; ok {
		return fmt.Errorf("recipe already exists: %w", common.ErrConflict)
	}
	r.s.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

func (r *memoryRecipeRepository) FindByID(ctx context.Context, id string) (*model.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rc, ok := r.s.recipes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	rc = cloneRecipe(rc)
	return &rc, nil
}

func (r *memoryRecipeRepository) List(ctx context.Context, filter model.RecipeFilter) ([]model.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	recipes := []model.Recipe{}
	for _, rc := range r.s.recipes {
		if filter.Category != "" && rc.Category != filter.Category {
			continue
		}
		if filter.Author != "" && rc.CreatedBy != filter.Author {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rc.Title), search) {
			continue
		}
		recipes = append(recipes, cloneRecipe(rc))
	}
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].CreatedAt.After(recipes[j].CreatedAt)
	})
	return recipes, nil
}

func (r *memoryRecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.recipes[recipe.ID]
	if !ok {
		return common.ErrNotFound
	}
	updated := cloneRecipe(*recipe)
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	updated.Author = nil
	r.s.recipes[recipe.ID] = updated
	return nil
}

func (r *memoryRecipeRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.recipes[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.recipes, id)
	return nil
}

func cloneRecipe(rc model.Recipe) model.Recipe {
	rc.Ingredients = append(make([]string, 0, len(rc.Ingredients)), rc.Ingredients...)
	rc.Author = nil
	return rc
}
