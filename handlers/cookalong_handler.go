package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"cookNestAPI/internal/types/cookalong"
	"cookNestAPI/middleware"
	"cookNestAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type CookAlongHandler struct {
	sessionManager *services.CookAlongManager
}

func NewCookAlongHandler(sessionManager *services.CookAlongManager) *CookAlongHandler {
	return &CookAlongHandler{
		sessionManager: sessionManager,
	}
}

// CreateSession opens a live cook-along room for a recipe and returns the
// websocket URL participants should connect to.
func (h *CookAlongHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req cookalong.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RecipeID == "" {
		respondWithError(w, http.StatusBadRequest, "recipeId is required")
		return
	}

	sessionID := uuid.New().String()
	h.sessionManager.CreateSession(sessionID, req.RecipeID, clerkID)

	respondWithJSON(w, http.StatusOK, cookalong.CreateSessionResponse{
		SessionID: sessionID,
		RecipeID:  req.RecipeID,
		WSURL:     "/api/v1/cook-along/ws/" + sessionID,
	})
}

func (h *CookAlongHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.sessionManager.ListSessions())
}

// JoinSession upgrades the connection and hooks it into the session hub.
func (h *CookAlongHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionID"]

	session, exists := h.sessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Cook-along session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &services.CookAlongClient{
		Session: session,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}

	client.Session.Register <- client
	go client.WritePump()
	go client.ReadPump()
}
