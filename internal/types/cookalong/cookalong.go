package cookalong

// Event types carried over a cook-along session's websocket.
const (
	EventChat       = "chat"
	EventStep       = "step"
	EventCooks      = "cooks"
	EventSessionEnd = "session_end"
)

type CreateSessionRequest struct {
	RecipeID string `json:"recipeId" validate:"required"`
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	RecipeID  string `json:"recipeId"`
	WSURL     string `json:"wsUrl"`
}

// Envelope is the wire format for every session message, inbound and outbound.
type Envelope struct {
	Type    string `json:"type"`
	Sender  string `json:"sender,omitempty"`
	Payload any    `json:"payload,omitempty"`
}
