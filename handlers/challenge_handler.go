package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cookNestAPI/internal/types/challenge"
	"cookNestAPI/middleware"
	"cookNestAPI/services"

	"github.com/gorilla/mux"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

// GetCurrentChallenges returns the catalog with end dates computed for the
// current weekly, monthly and annual cycles. No auth needed; the list is the
// same for everyone.
func (h *ChallengeHandler) GetCurrentChallenges(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.challengeService.CurrentChallenges())
}

func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.JoinChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}

	participation, err := h.challengeService.JoinChallenge(ctx, clerkID, req.Title)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			respondWithError(w, http.StatusNotFound, err.Error())
		case strings.Contains(err.Error(), "cannot join"):
			respondWithError(w, http.StatusForbidden, err.Error())
		case strings.Contains(err.Error(), "already joined"):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	middleware.CountChallengeJoin()
	respondWithJSON(w, http.StatusCreated, participation)
}

func (h *ChallengeHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	title := mux.Vars(r)["title"]
	if title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}

	participants, err := h.challengeService.GetParticipants(ctx, title)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, participants)
}
