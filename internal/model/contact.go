package model

import "time"

// ContactMessage is a message left through the contact form
type ContactMessage struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId,omitempty"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
	Subject string    `json:"subject,omitempty"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}
