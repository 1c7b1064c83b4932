package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContactForm() ContactForm {
	return ContactForm{
		Name:    "Bob Tran",
		Email:   "bob@x.com",
		Subject: "Size",
		Message: "Do you have this shirt in XL?",
	}
}

func TestContactService_Prefill(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	form, err := env.shop.Contact.Prefill(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContactForm{}, form)

	env.loginAlice(t)
	form, err = env.shop.Contact.Prefill(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice Nguyen", form.Name)
	assert.Equal(t, "alice@x.com", form.Email)
	assert.Equal(t, "0901234567", form.Phone)
}

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	guest, err := env.shop.Contact.Submit(ctx, validContactForm())
	require.NoError(t, err)
	assert.NotEmpty(t, guest.ID)
	assert.Empty(t, guest.UserID)
	assert.Equal(t, testNow, guest.SentAt)

	current := env.loginAlice(t)
	member, err := env.shop.Contact.Submit(ctx, validContactForm())
	require.NoError(t, err)
	assert.Equal(t, current.UserID, member.UserID)
	assert.NotEqual(t, guest.ID, member.ID)

	messages, err := env.shop.Contact.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, guest.ID, messages[0].ID)
}

func TestContactForm_Validate(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(*ContactForm)
	}{
		{"short name", "name", func(f *ContactForm) { f.Name = "B" }},
		{"missing email", "email", func(f *ContactForm) { f.Email = "" }},
		{"bad email", "email", func(f *ContactForm) { f.Email = "bob@" }},
		{"bad phone", "phone", func(f *ContactForm) { f.Phone = "123" }},
		{"short message", "message", func(f *ContactForm) { f.Message = "Hi there" }},
		{"long message", "message", func(f *ContactForm) { f.Message = strings.Repeat("a", 1001) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validContactForm()
			tt.edit(&form)

			err := form.Validate()
			require.ErrorIs(t, err, ErrInvalidInput)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	form := validContactForm()
	form.Phone = "0907 654 321"
	assert.NoError(t, form.Validate())
}
