package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoRecipeRepository struct {
	col *mongo.Collection
}

func NewMongoRecipeRepository(db *mongo.Database) RecipeRepository {
	return &mongoRecipeRepository{col: db.Collection(ColRecipes)}
}

func (r *mongoRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	if err := insertOne(ctx, r.col, recipe); err != nil {
		return fmt.Errorf("mongoRecipeRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoRecipeRepository) FindByID(ctx context.Context, id string) (*model.Recipe, error) {
	return findOne[model.Recipe](ctx, r.col, bson.D{{Key: "_id", Value: id}})
}

func (r *mongoRecipeRepository) List(ctx context.Context, filter model.RecipeFilter) ([]model.Recipe, error) {
	query := bson.D{}
	if filter.Category != "" {
		query = append(query, bson.E{Key: "category", Value: filter.Category})
	}
	if filter.Author != "" {
		query = append(query, bson.E{Key: "created_by", Value: filter.Author})
	}
	if filter.Search != "" {
		query = append(query, bson.E{Key: "title", Value: bson.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Recipe](ctx, r.col, query, opts)
}

// Update rewrites the mutable fields only; created_by and created_at are never set.
func (r *mongoRecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	return updateFields(ctx, r.col, recipe.ID, bson.D{
		{Key: "title", Value: recipe.Title},
		{Key: "slug", Value: recipe.Slug},
		{Key: "ingredients", Value: recipe.Ingredients},
		{Key: "instructions", Value: recipe.Instructions},
		{Key: "category", Value: recipe.Category},
		{Key: "photo_url", Value: recipe.PhotoURL},
		{Key: "cooking_time", Value: recipe.CookingTime},
		{Key: "updated_at", Value: recipe.UpdatedAt},
	})
}

func (r *mongoRecipeRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}
