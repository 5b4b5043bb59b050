package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatSession struct {
	SessionID string `db:"session_id"`
	Ctime     int64  `db:"ctime"`
}

type ChatMessage struct {
	ID        int64  `db:"id"`
	SessionID string `db:"session_id"`
	Role      string `db:"role"`
	Content   string `db:"content"`
	Ctime     int64  `db:"ctime"`
}

// ChecklistItem is one entry parsed out of a model-generated markdown list.
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}
