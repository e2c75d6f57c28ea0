package eventbus

import "time"

// Event topics
const (
	// Item lifecycle events
	EventItemCreated = "item:created"
	EventItemUpdated = "item:updated"
	EventItemDeleted = "item:deleted"

	// Session events
	EventSessionStarted = "session:started"
	EventSessionRevoked = "session:revoked"

	// System events
	EventSystemError = "system:error"
	EventSystemInfo  = "system:info"
)

// Event payloads
type ItemEventData struct {
	Action     string    `json:"action"`
	ItemID     string    `json:"item_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Category   string    `json:"category,omitempty"`
	OwnerID    uint      `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type SessionEventData struct {
	JTI       string `json:"jti"`
	AccountID uint   `json:"account_id"`
	Username  string `json:"username,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type SystemEventData struct {
	Level   string      `json:"level"` // error, warn, info
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
