package domain

// Conversation is a point-in-time snapshot of one conversation: its
// backend-assigned id (empty until the backend supplies one on a completed
// turn) and the ordered messages exchanged so far.
type Conversation struct {
	ConversationID string    `json:"conversation_id,omitempty"`
	Messages       []Message `json:"messages"`
}
