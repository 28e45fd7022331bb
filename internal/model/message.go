package model

import "time"

// Message is a directed note between two accounts. Immutable once created.
type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FromID    string    `gorm:"type:uuid;not null;index"                       json:"fromId"`
	ToID      string    `gorm:"type:uuid;not null;index"                       json:"toId"`
	Content   string    `gorm:"type:text;not null"                             json:"content"`
	ReplyTo   *string   `gorm:"type:uuid"                                      json:"replyTo,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"createdAt"`

	From *Account `gorm:"foreignKey:FromID;references:ID" json:"from,omitempty"`
	To   *Account `gorm:"foreignKey:ToID;references:ID"   json:"to,omitempty"`
}

// TableName maps the model to its table.
func (Message) TableName() string { return "messages" }

// Involves reports whether accountID is the sender or recipient.
func (m *Message) Involves(accountID string) bool {
	return m.FromID == accountID || m.ToID == accountID
}
