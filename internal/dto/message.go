package dto

// ── messages ──

// SendMessageRequest message to a doctor.
type SendMessageRequest struct {
	To      string `json:"to"      binding:"required,uuid"`
	Content string `json:"content" binding:"required,max=5000"`
}

// ReplyMessageRequest message to any account, optionally threaded.
type ReplyMessageRequest struct {
	To      string  `json:"to"      binding:"required,uuid"`
	Content string  `json:"content" binding:"required,max=5000"`
	ReplyTo *string `json:"replyTo" binding:"omitempty,uuid"`
}

// MessageResponse message view.
type MessageResponse struct {
	ID        string       `json:"id"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Content   string       `json:"content"`
	ReplyTo   *string      `json:"replyTo,omitempty"`
	CreatedAt string       `json:"createdAt"`
	Sender    *UserSummary `json:"sender,omitempty"`
}
