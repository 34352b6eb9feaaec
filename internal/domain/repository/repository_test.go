package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stores struct {
	users   UserRepository
	recipes RecipeRepository
}

// backends returns every store the environment can provide. The in-memory
// store is always present; Mongo and Postgres need MONGO_TEST_URI and
// POSTGRES_TEST_DSN respectively.
func backends(t *testing.T) map[string]func(t *testing.T) stores {
	t.Helper()
	out := map[string]func(t *testing.T) stores{
		"memory": func(t *testing.T) stores {
			s := NewMemoryStore()
			return stores{users: s.Users(), recipes: s.Recipes()}
		},
	}
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		out["mongo"] = func(t *testing.T) stores {
			ctx := context.Background()
			client, db, err := database.ConnectMongo(ctx, uri, "recipe_app_test")
			if err != nil {
				t.Skipf("MongoDB not available: %v", err)
			}
			require.NoError(t, db.Drop(ctx))
			require.NoError(t, EnsureMongoIndexes(ctx, db))
			t.Cleanup(func() {
				db.Drop(context.Background())
				client.Disconnect(context.Background())
			})
			return stores{users: NewMongoUserRepository(db), recipes: NewMongoRecipeRepository(db)}
		}
	}
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		out["postgres"] = func(t *testing.T) stores {
			ctx := context.Background()
			db, err := database.ConnectPostgres(ctx, dsn)
			if err != nil {
				t.Skipf("PostgreSQL not available: %v", err)
			}
			require.NoError(t, database.Migrate(ctx, db))
			_, err = db.ExecContext(ctx, `TRUNCATE recipes, users`)
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return stores{users: NewPgUserRepository(db), recipes: NewPgRecipeRepository(db)}
		}
	}
	return out
}

func newUser(id, username, email string) *model.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.User{
		ID:             id,
		Username:       username,
		Email:          email,
		HashedPassword: "$2a$04$hash-for-" + id,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func newRecipe(id, owner, title, category string, createdAt time.Time) *model.Recipe {
	return &model.Recipe{
		ID:           id,
		Title:        title,
		Slug:         id + "-slug",
		Ingredients:  []string{"flour", "water"},
		Instructions: "mix",
		Category:     category,
		PhotoURL:     "http://img.test/" + id + ".jpg",
		CookingTime:  25,
		CreatedBy:    owner,
		CreatedAt:    createdAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:    createdAt.UTC().Truncate(time.Millisecond),
	}
}

func TestUserRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			alice := newUser("u-alice", "alice", "a@x.com")
			require.NoError(t, s.users.Create(ctx, alice))

			got, err := s.users.FindByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Username)
			assert.Equal(t, alice.HashedPassword, got.HashedPassword)

			got, err = s.users.FindByUsername(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, "u-alice", got.ID)

			got, err = s.users.FindByID(ctx, "u-alice")
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", got.Email)

			_, err = s.users.FindByEmail(ctx, "missing@x.com")
			assert.ErrorIs(t, err, common.ErrNotFound)
			_, err = s.users.FindByID(ctx, "u-missing")
			assert.ErrorIs(t, err, common.ErrNotFound)

			err = s.users.Create(ctx, newUser("u-other", "alice2", "a@x.com"))
			assert.ErrorIs(t, err, common.ErrConflict, "duplicate email")
			err = s.users.Create(ctx, newUser("u-other", "alice", "other@x.com"))
			assert.ErrorIs(t, err, common.ErrConflict, "duplicate username")

			require.NoError(t, s.users.Create(ctx, newUser("u-bob", "bob", "b@x.com")))
			many, err := s.users.FindByIDs(ctx, []string{"u-alice", "u-bob", "u-missing"})
			require.NoError(t, err)
			assert.Len(t, many, 2)

			none, err := s.users.FindByIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestRecipeRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.users.Create(ctx, newUser("u-alice", "alice", "a@x.com")))
			require.NoError(t, s.users.Create(ctx, newUser("u-bob", "bob", "b@x.com")))

			base := time.Now().Add(-time.Hour)
			require.NoError(t, s.recipes.Create(ctx, newRecipe("r-1", "u-alice", "Pancakes", "Breakfast", base)))
			require.NoError(t, s.recipes.Create(ctx, newRecipe("r-2", "u-alice", "Tomato Soup", "Lunch", base.Add(time.Minute))))
			require.NoError(t, s.recipes.Create(ctx, newRecipe("r-3", "u-bob", "Banana pancakes", "Breakfast", base.Add(2*time.Minute))))

			got, err := s.recipes.FindByID(ctx, "r-1")
			require.NoError(t, err)
			assert.Equal(t, "Pancakes", got.Title)
			assert.Equal(t, []string{"flour", "water"}, got.Ingredients)
			assert.Equal(t, 25, got.CookingTime)
			assert.Equal(t, "u-alice", got.CreatedBy)

			_, err = s.recipes.FindByID(ctx, "r-missing")
			assert.ErrorIs(t, err, common.ErrNotFound)

			all, err := s.recipes.List(ctx, model.RecipeFilter{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "r-3", all[0].ID, "newest first")

			breakfast, err := s.recipes.List(ctx, model.RecipeFilter{Category: "Breakfast"})
			require.NoError(t, err)
			assert.Len(t, breakfast, 2)

			mine, err := s.recipes.List(ctx, model.RecipeFilter{Author: "u-alice"})
			require.NoError(t, err)
			assert.Len(t, mine, 2)

			search, err := s.recipes.List(ctx, model.RecipeFilter{Search: "PANCAKE"})
			require.NoError(t, err)
			assert.Len(t, search, 2)

			literal, err := s.recipes.List(ctx, model.RecipeFilter{Search: "%"})
			require.NoError(t, err)
			assert.Empty(t, literal)

			none, err := s.recipes.List(ctx, model.RecipeFilter{Category: "Dessert"})
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)

			got.Title = "Fluffy Pancakes"
			got.Ingredients = []string{"flour", "milk", "egg"}
			got.CookingTime = 30
			got.CreatedBy = "u-bob" // must be ignored
			got.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
			require.NoError(t, s.recipes.Update(ctx, got))

			updated, err := s.recipes.FindByID(ctx, "r-1")
			require.NoError(t, err)
			assert.Equal(t, "Fluffy Pancakes", updated.Title)
			assert.Equal(t, []string{"flour", "milk", "egg"}, updated.Ingredients)
			assert.Equal(t, 30, updated.CookingTime)
			assert.Equal(t, "u-alice", updated.CreatedBy)

			assert.ErrorIs(t, s.recipes.Update(ctx, newRecipe("r-missing", "u-alice", "x", "y", base)), common.ErrNotFound)

			require.NoError(t, s.recipes.Delete(ctx, "r-1"))
			_, err = s.recipes.FindByID(ctx, "r-1")
			assert.ErrorIs(t, err, common.ErrNotFound)
			assert.ErrorIs(t, s.recipes.Delete(ctx, "r-1"), common.ErrNotFound)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	rc := newRecipe("r-1", "u-alice", "Pancakes", "Breakfast", time.Now())
	require.NoError(t, s.Recipes().Create(ctx, rc))

	rc.Ingredients[0] = "sugar"
	got, err := s.Recipes().FindByID(ctx, "r-1")
	require.NoError(t, err)
	got.Ingredients[1] = "salt"

	again, err := s.Recipes().FindByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"flour", "water"}, again.Ingredients)
}
