package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"
)

// RecipeRepository persists recipes. The owner (CreatedBy) and CreatedAt are
// written once by Create and never touched by Update.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	FindByID(ctx context.Context, id string) (*model.Recipe, error)
	List(ctx context.Context, filter model.RecipeFilter) ([]model.Recipe, error)
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, id string) error
}

type pgRecipeRepository struct {
	db *sql.DB
}

func NewPgRecipeRepository(db *sql.DB) RecipeRepository {
	return &pgRecipeRepository{db: db}
}

const recipeColumns = `id, title, slug, ingredients, instructions, category, photo_url, cooking_time, created_by, created_at, updated_at`

func (r *pgRecipeRepository) Create(ctx context.Context, rc *model.Recipe) error {
	ingredients, err := json.Marshal(rc.Ingredients)
	if err != nil {
		return fmt.Errorf("pgRecipeRepository.Create marshal ingredients: %w", err)
	}
	query := `INSERT INTO recipes (` + recipeColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(ctx, query, rc.ID, rc.Title, rc.Slug, string(ingredients), rc.Instructions,
		rc.Category, rc.PhotoURL, rc.CookingTime, rc.CreatedBy, rc.CreatedAt, rc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("recipe already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgRecipeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgRecipeRepository) FindByID(ctx context.Context, id string) (*model.Recipe, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
	rc, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRecipeRepository.FindByID: %w", err)
	}
	return rc, nil
}

func (r *pgRecipeRepository) List(ctx context.Context, filter model.RecipeFilter) ([]model.Recipe, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + recipeColumns + ` FROM recipes`)

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, filter.Category)
		argID++
	}
	if filter.Author != "" {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", argID))
		args = append(args, filter.Author)
		argID++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", argID))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argID++
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgRecipeRepository.List query: %w", err)
	}
	defer rows.Close()

	recipes := []model.Recipe{}
	for rows.Next() {
		rc, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("pgRecipeRepository.List scan: %w", err)
		}
		recipes = append(recipes, *rc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRecipeRepository.List rows.Err: %w", err)
	}
	return recipes, nil
}

func (r *pgRecipeRepository) Update(ctx context.Context, rc *model.Recipe) error {
	ingredients, err := json.Marshal(rc.Ingredients)
	if err != nil {
		return fmt.Errorf("pgRecipeRepository.Update marshal ingredients: %w", err)
	}
	query := `UPDATE recipes SET
                title = $1, slug = $2, ingredients = $3, instructions = $4, category = $5,
                photo_url = $6, cooking_time = $7, updated_at = $8
              WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query, rc.Title, rc.Slug, string(ingredients), rc.Instructions,
		rc.Category, rc.PhotoURL, rc.CookingTime, rc.UpdatedAt, rc.ID)
	if err != nil {
		return fmt.Errorf("pgRecipeRepository.Update: %w", err)
	}
	return expectAffected(res, "Update")
}

func (r *pgRecipeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgRecipeRepository.Delete: %w", err)
	}
	return expectAffected(res, "Delete")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*model.Recipe, error) {
	rc := &model.Recipe{}
	var ingredients []byte
	if err := row.Scan(&rc.ID, &rc.Title, &rc.Slug, &ingredients, &rc.Instructions, &rc.Category,
		&rc.PhotoURL, &rc.CookingTime, &rc.CreatedBy, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ingredients, &rc.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	return rc, nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgRecipeRepository.%s rows affected: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
