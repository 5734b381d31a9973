package handlers

import (
	"context"
	"net/http"
	"time"

	"cookNestAPI/middleware"
	"cookNestAPI/services"
)

type BillingHandler struct {
	billingService *services.BillingService
}

func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

func (h *BillingHandler) GetTiers(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.billingService.ListTiers())
}

func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	state, err := h.billingService.GetSubscriptionState(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}
