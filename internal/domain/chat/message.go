// Package chat defines the chat Message entity.
package chat

import "time"

// Message is a single chat message between a user and the assistant.
// Messages are append-only; nothing in the service mutates or deletes them.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
