package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cookNestAPI/internal/types/mealplan"
	"cookNestAPI/middleware"
	"cookNestAPI/services"

	"github.com/gorilla/mux"
)

type MealPlanHandler struct {
	mealPlanService *services.MealPlanService
}

func NewMealPlanHandler(mealPlanService *services.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{
		mealPlanService: mealPlanService,
	}
}

// respondPlanError maps the meal planner's error strings to status codes.
// The paid-plan gate comes back as 403 so the app can show an upgrade prompt.
func respondPlanError(w http.ResponseWriter, err error) {
	switch {
	case strings.Contains(err.Error(), "paid plan"):
		respondWithError(w, http.StatusForbidden, err.Error())
	case strings.Contains(err.Error(), "not found"):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *MealPlanHandler) GetCurrentPlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	plan, err := h.mealPlanService.GetOrCreateCurrentPlan(ctx, clerkID)
	if err != nil {
		respondPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req mealplan.AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RecipeID == "" || req.Date == "" || req.Slot == "" {
		respondWithError(w, http.StatusBadRequest, "recipeId, date and slot are required")
		return
	}

	entry, err := h.mealPlanService.AddEntry(ctx, clerkID, &req)
	if err != nil {
		respondPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *MealPlanHandler) MoveEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req mealplan.MoveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.mealPlanService.MoveEntry(ctx, clerkID, &req); err != nil {
		respondPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Entry moved"})
}

func (h *MealPlanHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entryID := mux.Vars(r)["entryID"]

	if err := h.mealPlanService.RemoveEntry(ctx, clerkID, entryID); err != nil {
		respondPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Entry removed"})
}

// DuplicatePlan copies a week's plan into the week given by ?week=YYYY-MM-DD.
func (h *MealPlanHandler) DuplicatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	mealPlanID := mux.Vars(r)["planID"]
	targetWeek := r.URL.Query().Get("week")
	if targetWeek == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'week' is required (YYYY-MM-DD)")
		return
	}

	plan, err := h.mealPlanService.DuplicatePlan(ctx, clerkID, mealPlanID, targetWeek)
	if err != nil {
		respondPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, plan)
}

func (h *MealPlanHandler) GenerateShoppingList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	mealPlanID := mux.Vars(r)["planID"]

	list, err := h.mealPlanService.GenerateShoppingList(ctx, clerkID, mealPlanID)
	if err != nil {
		respondPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

func (h *MealPlanHandler) ToggleShoppingListItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	itemID := mux.Vars(r)["itemID"]

	checked, err := h.mealPlanService.ToggleShoppingListItem(ctx, clerkID, itemID)
	if err != nil {
		respondPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"checked": checked})
}
