package model

import (
	"time"
)

// User is a registered account.
// Password holds whatever the configured auth.Hasher produced; with the default plaintext
// hasher that is the password itself.
type User struct {
	ID                string     `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Password          string     `json:"password"`
	RegisteredAt      time.Time  `json:"registeredAt"`
	IsActive          bool       `json:"isActive"`
	BirthDate         string     `json:"birthDate,omitempty"`
	Address           string     `json:"address,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
	PasswordUpdatedAt *time.Time `json:"passwordUpdatedAt,omitempty"`
	DeactivatedAt     *time.Time `json:"deactivatedAt,omitempty"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CurrentUser is the login snapshot kept for the active session
type CurrentUser struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Phone      string    `json:"phone,omitempty"`
	LoginTime  time.Time `json:"loginTime"`
	RememberMe bool      `json:"rememberMe"`
}

// DisplayName is what the header shows for the logged-in user
func (c *CurrentUser) DisplayName() string {
	if c.FirstName != "" {
		return c.FirstName
	}
	return c.Username
}

// NewCurrentUser snapshots u at login time
func NewCurrentUser(u *User, loginTime time.Time, rememberMe bool) *CurrentUser {
	return &CurrentUser{
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		LoginTime:  loginTime,
		RememberMe: rememberMe,
	}
}

// UserSettings holds per-user notification and security preferences
type UserSettings struct {
	EmailNotifications     bool `json:"emailNotifications"`
	SMSNotifications       bool `json:"smsNotifications"`
	PromotionNotifications bool `json:"promotionNotifications"`
	TwoFactorAuth          bool `json:"twoFactorAuth"`
	LoginNotifications     bool `json:"loginNotifications"`
}

// DefaultUserSettings returns the settings of a user who never saved any
func DefaultUserSettings() UserSettings {
	return UserSettings{
		EmailNotifications:     true,
		SMSNotifications:       false,
		PromotionNotifications: true,
		TwoFactorAuth:          false,
		LoginNotifications:     true,
	}
}
