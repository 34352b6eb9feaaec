package handler

import (
	"net/http"

	"github.com/Pranav-7262/mern-recipe-app/internal/api/middleware"
	"github.com/Pranav-7262/mern-recipe-app/internal/app/service"
	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	debug         bool
}

func NewRecipeHandler(recipeService *service.RecipeService, debug bool) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, debug: debug}
}

func (h *RecipeHandler) RegisterRoutes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Get("/", h.listRecipes)
	r.Get("/{recipeID}", h.getRecipe)

	r.Group(func(authed chi.Router) {
		authed.Use(gate)
		authed.Post("/", h.createRecipe)
		authed.Put("/{recipeID}", h.updateRecipe)
		authed.Delete("/{recipeID}", h.deleteRecipe)
	})
}

func (h *RecipeHandler) listRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RecipeFilter{
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Search:   q.Get("search"),
	}

	recipes, err := h.recipeService.ListRecipes(r.Context(), filter)
	if err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) getRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.recipeService.GetRecipe(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) createRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	var req service.CreateRecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(r.Context(), user, req)
	if err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) updateRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	recipeID := chi.URLParam(r, "recipeID")

	// Existence and ownership are settled before the body is looked at.
	if err := h.recipeService.AuthorizeMutation(r.Context(), user.ID, recipeID); err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	var req service.UpdateRecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(r.Context(), user.ID, recipeID, req)
	if err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := h.recipeService.DeleteRecipe(r.Context(), user.ID, chi.URLParam(r, "recipeID")); err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Recipe deleted successfully"})
}
