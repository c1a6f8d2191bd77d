package models

import "time"

// Message is a note from one user to another. Sender and Receiver hold the
// canonical usernames at the time of sending.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageRequest represents the message composer form
type SendMessageRequest struct {
	Receiver string `form:"receiver"`
	Message  string `form:"message"`
}
