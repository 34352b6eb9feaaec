package model

import (
	"time"
)

type Recipe struct {
	ID           string    `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Slug         string    `json:"slug" bson:"slug"`
	Ingredients  []string  `json:"ingredients" bson:"ingredients"`
	Instructions string    `json:"instructions" bson:"instructions"`
	Category     string    `json:"category" bson:"category"`
	PhotoURL     string    `json:"photoUrl" bson:"photo_url"`
	CookingTime  int       `json:"cookingTime" bson:"cooking_time"` // minutes
	CreatedBy    string    `json:"createdBy" bson:"created_by"`     // owner user ID, immutable
	Author       *Author   `json:"author,omitempty" bson:"-"`       // For display
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// IsOwnedBy reports whether userID is the recorded owner of the recipe.
func (r *Recipe) IsOwnedBy(userID string) bool {
	return userID != "" && r.CreatedBy == userID
}

// RecipeFilter narrows recipe listings. Empty fields are ignored.
type RecipeFilter struct {
	Category string
	Author   string
	Search   string
}
