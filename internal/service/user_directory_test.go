package service

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserDirectory_Register(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	req := aliceRequest()
	req.Username = "  alice  "
	user, err := env.shop.Users.Register(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "id-001", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsActive)
	assert.Equal(t, testNow, user.RegisteredAt)

	stored, err := env.shop.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestUserDirectory_RegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.shop.Users.Register(ctx, aliceRequest())
	require.NoError(t, err)

	sameUsername := aliceRequest()
	sameUsername.Email = "other@x.com"
	_, err = env.shop.Users.Register(ctx, sameUsername)
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// Username is checked before email
	_, err = env.shop.Users.Register(ctx, aliceRequest())
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	sameEmail := aliceRequest()
	sameEmail.Username = "alice2"
	_, err = env.shop.Users.Register(ctx, sameEmail)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserDirectory_RegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(*RegisterRequest)
	}{
		{"short first name", "firstName", func(r *RegisterRequest) { r.FirstName = "A" }},
		{"short username", "username", func(r *RegisterRequest) { r.Username = "al" }},
		{"bad email", "email", func(r *RegisterRequest) { r.Email = "alice.x.com" }},
		{"bad phone", "phone", func(r *RegisterRequest) { r.Phone = "12345" }},
		{"weak password", "password", func(r *RegisterRequest) { r.Password = "password" }},
		{"confirm mismatch", "confirmPassword", func(r *RegisterRequest) { r.ConfirmPassword = "Password2" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := aliceRequest()
			tt.edit(&req)

			_, err := env.shop.Users.Register(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidInput)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUserDirectory_Login(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.shop.Users.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	current := env.loginAlice(t)
	assert.Equal(t, "id-001", current.UserID)
	assert.Equal(t, "Alice", current.FirstName)
	assert.Equal(t, "0901234567", current.Phone)
	assert.Equal(t, testNow, current.LoginTime)

	got, err := env.shop.Users.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, current, got)

	_, err = env.shop.Users.Login(ctx, "alice", "Wrong1234", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.shop.Users.Login(ctx, "nobody", "Password1", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserDirectory_LogoutKeepsCart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loginAlice(t)

	_, err := env.shop.Cart.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	require.NoError(t, env.shop.Users.Logout(ctx))
	require.NoError(t, env.shop.Users.Logout(ctx))

	_, err = env.shop.Users.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	count, err := env.shop.Cart.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserDirectory_InactiveLogin(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t)
	current := env.loginAlice(t)
	require.NoError(t, env.shop.Users.Deactivate(ctx, current.UserID))

	_, err := env.shop.Users.Authenticate(ctx, "alice", "Password1")
	assert.NoError(t, err)

	strict := newTestEnv(t, func(c *config.Config) { c.Shop.RejectInactiveLogin = true })
	current = strict.loginAlice(t)
	require.NoError(t, strict.shop.Users.Deactivate(ctx, current.UserID))

	_, err = strict.shop.Users.Authenticate(ctx, "alice", "Password1")
	assert.ErrorIs(t, err, ErrAccountNotActive)
}

func TestUserDirectory_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	current := env.loginAlice(t)

	bob := aliceRequest()
	bob.Username = "bob"
	bob.Email = "bob@x.com"
	_, err := env.shop.Users.Register(ctx, bob)
	require.NoError(t, err)

	_, err = env.shop.Users.UpdateProfile(ctx, current.UserID, ProfileUpdate{Email: strPtr("bob@x.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	env.clock.advance(time.Hour)
	user, err := env.shop.Users.UpdateProfile(ctx, current.UserID, ProfileUpdate{
		FirstName: strPtr(" Alicia "),
		Email:     strPtr("alice@x.com"),
		Address:   strPtr("12 Le Loi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.FirstName)
	assert.Equal(t, "Nguyen", user.LastName)
	assert.Equal(t, "12 Le Loi", user.Address)
	require.NotNil(t, user.UpdatedAt)
	assert.Equal(t, testNow.Add(time.Hour), *user.UpdatedAt)

	snapshot, err := env.shop.Users.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", snapshot.FirstName)

	_, err = env.shop.Users.UpdateProfile(ctx, current.UserID, ProfileUpdate{Phone: strPtr("123")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.shop.Users.UpdateProfile(ctx, "missing", ProfileUpdate{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserDirectory_ChangePassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	current := env.loginAlice(t)
	users := env.shop.Users

	assert.ErrorIs(t, users.ChangePassword(ctx, "missing", "Password1", "Password2"), ErrUserNotFound)
	assert.ErrorIs(t, users.ChangePassword(ctx, current.UserID, "Wrong1234", "Password2"), ErrWrongCurrentPassword)
	assert.ErrorIs(t, users.ChangePassword(ctx, current.UserID, "Password1", "Password1"), ErrSameAsCurrent)
	assert.ErrorIs(t, users.ChangePassword(ctx, current.UserID, "Password1", "weak"), ErrInvalidInput)

	require.NoError(t, users.ChangePassword(ctx, current.UserID, "Password1", "Password2"))

	_, err := users.Authenticate(ctx, "alice", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	user, err := users.Authenticate(ctx, "alice", "Password2")
	require.NoError(t, err)
	assert.NotNil(t, user.PasswordUpdatedAt)
}

func TestUserDirectory_Deactivate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	current := env.loginAlice(t)

	_, err := env.shop.Cart.AddItem(ctx, 2, 1)
	require.NoError(t, err)
	_, err = env.shop.Cart.ApplyDiscount(ctx, "NEWUSER")
	require.NoError(t, err)
	require.NoError(t, env.shop.Settings.Update(ctx, current.UserID, model.UserSettings{TwoFactorAuth: true}))

	require.NoError(t, env.shop.Users.Deactivate(ctx, current.UserID))

	user, err := env.shop.Users.Get(ctx, current.UserID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.NotNil(t, user.DeactivatedAt)

	_, err = env.shop.Users.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	keys := env.repo.Keys("test-session")
	assert.NotContains(t, keys, store.UserSettingsKey(current.UserID))
	assert.NotContains(t, keys, store.KeyAppliedDiscount)

	items, err := env.shop.Cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, env.shop.Users.Deactivate(ctx, "missing"), ErrUserNotFound)
}
