package service

import (
	"context"
	"strings"
	"time"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/store"
)

// UserDirectory manages registered users and the login session
type UserDirectory struct {
	s   *session
	log *logger.Logger
}

// RegisterRequest contains the data for registering a new user
type RegisterRequest struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Phone     string
	Password  string
	// ConfirmPassword is checked against Password when set
	ConfirmPassword string
	BirthDate       string
	Address         string
}

func (r *RegisterRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *RegisterRequest) validate(minPasswordLength int) error {
	if err := auth.ValidateName(r.FirstName, 2); err != nil {
		return invalid("firstName", err)
	}
	if err := auth.ValidateName(r.LastName, 2); err != nil {
		return invalid("lastName", err)
	}
	if err := auth.ValidateUsername(r.Username); err != nil {
		return invalid("username", err)
	}
	if !auth.ValidEmail(r.Email) {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	if !auth.ValidPhone(r.Phone) {
		return &ValidationError{Field: "phone", Message: "phone number must have 10 or 11 digits"}
	}
	if err := auth.ValidatePassword(r.Password, minPasswordLength); err != nil {
		return invalid("password", err)
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		return &ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	return nil
}

// Register creates a new user account
func (d *UserDirectory) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	req.normalize()
	if err := req.validate(d.s.cfg.Security.Password.MinLength); err != nil {
		return nil, err
	}

	users, err := d.s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Username == req.Username {
			return nil, ErrDuplicateUsername
		}
	}
	for i := range users {
		if users[i].Email == req.Email {
			return nil, ErrDuplicateEmail
		}
	}

	password, err := d.s.hasher.Hash(req.Password)
	if err != nil {
		return nil, failed("hash password", err)
	}

	user := model.User{
		ID:           d.s.newID(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     password,
		RegisteredAt: d.s.now(),
		IsActive:     true,
		BirthDate:    req.BirthDate,
		Address:      req.Address,
	}

	if err := d.s.saveUsers(ctx, append(users, user)); err != nil {
		return nil, err
	}

	d.log.AuditLog(user.ID, model.AuditActionRegister, model.ResourceUser, user.ID, map[string]interface{}{
		"username": user.Username,
	})

	return &user, nil
}

// Authenticate finds the user whose username and password both match.
// Deactivated accounts are accepted unless shop.reject_inactive_login is set.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	return d.authenticate(ctx, username, password)
}

func (d *UserDirectory) authenticate(ctx context.Context, username, password string) (*model.User, error) {
	users, err := d.s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Username != username {
			continue
		}
		ok, err := d.s.hasher.Verify(password, users[i].Password)
		if err != nil {
			d.log.Warn().Err(err).Str("user_id", users[i].ID).Msg("stored credential could not be verified")
			continue
		}
		if !ok {
			continue
		}
		if d.s.cfg.Shop.RejectInactiveLogin && !users[i].IsActive {
			return nil, ErrAccountNotActive
		}
		user := users[i]
		return &user, nil
	}

	d.log.AuditLog("", model.AuditActionLoginFailed, model.ResourceUser, "", map[string]interface{}{
		"username": username,
	})
	return nil, ErrInvalidCredentials
}

// Login authenticates and stores the session snapshot
func (d *UserDirectory) Login(ctx context.Context, username, password string, rememberMe bool) (*model.CurrentUser, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	user, err := d.authenticate(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, err
	}

	current := model.NewCurrentUser(user, d.s.now(), rememberMe)
	if err := d.s.kv.Put(ctx, store.KeyCurrentUser, current); err != nil {
		return nil, failed("save session", err)
	}

	d.log.AuditLog(user.ID, model.AuditActionLogin, model.ResourceUser, user.ID, map[string]interface{}{
		"remember_me": rememberMe,
	})

	return current, nil
}

// Logout ends the login session; the cart stays
func (d *UserDirectory) Logout(ctx context.Context) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	current, err := d.s.loadCurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := d.s.kv.Remove(ctx, store.KeyCurrentUser); err != nil {
		return failed("remove session", err)
	}

	if current != nil {
		d.log.AuditLog(current.UserID, model.AuditActionLogout, model.ResourceUser, current.UserID, nil)
	}
	return nil
}

// CurrentUser returns the session snapshot or ErrNotLoggedIn
func (d *UserDirectory) CurrentUser(ctx context.Context) (*model.CurrentUser, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	current, err := d.s.loadCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotLoggedIn
	}
	return current, nil
}

// Get returns the stored user record
func (d *UserDirectory) Get(ctx context.Context, userID string) (*model.User, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	users, err := d.s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := findUser(users, userID)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	user := users[i]
	return &user, nil
}

// ProfileUpdate lists the profile fields to change; nil fields are left alone
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	BirthDate *string
	Address   *string
}

func (u *ProfileUpdate) validate() error {
	if u.FirstName != nil {
		if err := auth.ValidateName(*u.FirstName, 2); err != nil {
			return invalid("firstName", err)
		}
	}
	if u.LastName != nil {
		if err := auth.ValidateName(*u.LastName, 2); err != nil {
			return invalid("lastName", err)
		}
	}
	if u.Email != nil && !auth.ValidEmail(strings.TrimSpace(*u.Email)) {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	if u.Phone != nil && *u.Phone != "" && !auth.ValidPhone(*u.Phone) {
		return &ValidationError{Field: "phone", Message: "phone number must have 10 or 11 digits"}
	}
	return nil
}

// UpdateProfile merges fields into the stored record and into the session snapshot
func (d *UserDirectory) UpdateProfile(ctx context.Context, userID string, fields ProfileUpdate) (*model.User, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if err := fields.validate(); err != nil {
		return nil, err
	}

	users, err := d.s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := findUser(users, userID)
	if i < 0 {
		return nil, ErrUserNotFound
	}

	if fields.Email != nil {
		email := strings.TrimSpace(*fields.Email)
		for j := range users {
			if j != i && users[j].Email == email {
				return nil, ErrEmailTaken
			}
		}
	}

	user := &users[i]
	setTrimmed(&user.FirstName, fields.FirstName)
	setTrimmed(&user.LastName, fields.LastName)
	setTrimmed(&user.Email, fields.Email)
	setTrimmed(&user.Phone, fields.Phone)
	setTrimmed(&user.BirthDate, fields.BirthDate)
	setTrimmed(&user.Address, fields.Address)
	now := d.s.now()
	user.UpdatedAt = &now

	if err := d.s.saveUsers(ctx, users); err != nil {
		return nil, err
	}

	current, err := d.s.loadCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil && current.UserID == userID {
		current.FirstName = user.FirstName
		current.LastName = user.LastName
		current.Email = user.Email
		current.Phone = user.Phone
		if err := d.s.kv.Put(ctx, store.KeyCurrentUser, current); err != nil {
			return nil, failed("save session", err)
		}
	}

	d.log.AuditLog(userID, model.AuditActionProfileUpdate, model.ResourceUser, userID, nil)

	updated := *user
	return &updated, nil
}

// ChangePassword replaces the password after checking the current one
func (d *UserDirectory) ChangePassword(ctx context.Context, userID, current, next string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	users, err := d.s.loadUsers(ctx)
	if err != nil {
		return err
	}
	i := findUser(users, userID)
	if i < 0 {
		return ErrUserNotFound
	}

	ok, err := d.s.hasher.Verify(current, users[i].Password)
	if err != nil || !ok {
		return ErrWrongCurrentPassword
	}
	if next == current {
		return ErrSameAsCurrent
	}
	if err := auth.ValidatePassword(next, d.s.cfg.Security.Password.MinLength); err != nil {
		return invalid("newPassword", err)
	}

	hashed, err := d.s.hasher.Hash(next)
	if err != nil {
		return failed("hash password", err)
	}

	now := d.s.now()
	users[i].Password = hashed
	users[i].PasswordUpdatedAt = &now

	if err := d.s.saveUsers(ctx, users); err != nil {
		return err
	}

	d.log.AuditLog(userID, model.AuditActionPasswordChange, model.ResourceUser, userID, nil)
	return nil
}

// Deactivate soft-deletes the account and clears the session: login snapshot, cart,
// applied discount and the user's settings
func (d *UserDirectory) Deactivate(ctx context.Context, userID string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	users, err := d.s.loadUsers(ctx)
	if err != nil {
		return err
	}
	i := findUser(users, userID)
	if i < 0 {
		return ErrUserNotFound
	}

	now := d.s.now()
	users[i].IsActive = false
	users[i].DeactivatedAt = &now

	if err := d.s.saveUsers(ctx, users); err != nil {
		return err
	}

	for _, key := range []string{store.KeyCurrentUser, store.UserSettingsKey(userID)} {
		if err := d.s.kv.Remove(ctx, key); err != nil {
			return failed("clear session", err)
		}
	}
	if err := d.s.clearCart(ctx); err != nil {
		return err
	}

	d.log.AuditLog(userID, model.AuditActionDeactivate, model.ResourceUser, userID, map[string]interface{}{
		"deactivated_at": now.Format(time.RFC3339),
	})
	return nil
}

func findUser(users []model.User, userID string) int {
	for i := range users {
		if users[i].ID == userID {
			return i
		}
	}
	return -1
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
