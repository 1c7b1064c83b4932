package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/store"
)

// Contact message length bounds
const (
	ContactMessageMinLength = 10
	ContactMessageMaxLength = 1000
)

// ContactService records messages sent through the contact form. Guests may use it.
type ContactService struct {
	s   *session
	log *logger.Logger
}

// ContactForm is the contact form as submitted
type ContactForm struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

func (f *ContactForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
}

// Validate checks the contact form fields
func (f ContactForm) Validate() error {
	f.normalize()

	if err := auth.ValidateName(f.Name, 2); err != nil {
		return invalid("name", err)
	}
	if f.Email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if !auth.ValidEmail(f.Email) {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	if f.Phone != "" && !auth.ValidPhone(f.Phone) {
		return &ValidationError{Field: "phone", Message: "phone number must have 10 or 11 digits"}
	}

	n := utf8.RuneCountInString(f.Message)
	switch {
	case n == 0:
		return &ValidationError{Field: "message", Message: "message is required"}
	case n < ContactMessageMinLength:
		return &ValidationError{Field: "message", Message: "message must be at least 10 characters long"}
	case n > ContactMessageMaxLength:
		return &ValidationError{Field: "message", Message: "message must be at most 1000 characters long"}
	}
	return nil
}

// Prefill returns the form pre-filled from the logged-in user; guests get an empty form
func (cs *ContactService) Prefill(ctx context.Context) (ContactForm, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	current, err := cs.s.loadCurrentUser(ctx)
	if err != nil {
		return ContactForm{}, err
	}
	if current == nil {
		return ContactForm{}, nil
	}
	return ContactForm{
		Name:  strings.TrimSpace(current.FirstName + " " + current.LastName),
		Email: current.Email,
		Phone: current.Phone,
	}, nil
}

// Submit validates and stores a contact message
func (cs *ContactService) Submit(ctx context.Context, form ContactForm) (*model.ContactMessage, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	form.normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	current, err := cs.s.loadCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	msg := model.ContactMessage{
		ID:      uuid.New().String(),
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Subject: form.Subject,
		Message: form.Message,
		SentAt:  cs.s.now(),
	}
	if current != nil {
		msg.UserID = current.UserID
	}

	var messages []model.ContactMessage
	if _, err := cs.s.kv.Get(ctx, store.KeyContactMessages, &messages); err != nil {
		return nil, failed("load contact messages", err)
	}
	if err := cs.s.kv.Put(ctx, store.KeyContactMessages, append(messages, msg)); err != nil {
		return nil, failed("save contact message", err)
	}

	cs.log.AuditLog(msg.UserID, model.AuditActionContactReceived, model.ResourceContact, msg.ID, nil)
	return &msg, nil
}

// List returns the stored contact messages in submission order
func (cs *ContactService) List(ctx context.Context) ([]model.ContactMessage, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	var messages []model.ContactMessage
	if _, err := cs.s.kv.Get(ctx, store.KeyContactMessages, &messages); err != nil {
		return nil, failed("load contact messages", err)
	}
	return messages, nil
}
