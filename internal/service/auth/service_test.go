package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

func newService() (*Service, *repository.Users) {
	users := repository.NewUsers(store.NewMemory())
	svc := NewService(users, nil)
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	u, err := svc.Register(ctx, RegisterInput{Username: " sofiane ", Password: "brebis2024", FarmName: "Ferme Atlas"})
	require.NoError(t, err)
	assert.Equal(t, "sofiane", u.Username)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NotEqual(t, "brebis2024", u.PasswordHash)

	logged, err := svc.Login(ctx, "sofiane", "brebis2024")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, err = svc.Login(ctx, "sofiane", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Register(ctx, RegisterInput{Username: "sofiane", Password: "brebis2024"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = svc.Register(ctx, RegisterInput{Username: "sofiane", Password: "brebis2024", FarmName: "Ferme Atlas"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "sofiane", Password: "autre", FarmName: "Autre"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginUnknownAccount(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Login(context.Background(), "nobody", "x")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	ctx := context.Background()
	svc, users := newService()
	legacy := base64.StdEncoding.EncodeToString([]byte("pass"))
	require.NoError(t, users.Save(ctx, models.User{ID: "1717171717171", Username: "sofiane", PasswordHash: legacy, FarmName: "Ferme Atlas", Role: models.RoleAdmin}))

	_, err := svc.Login(ctx, "sofiane", "nope")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	u, err := svc.Login(ctx, "sofiane", "pass")
	require.NoError(t, err)
	assert.True(t, isBcrypt(u.PasswordHash))

	stored, ok, err := users.FindByID(ctx, "1717171717171")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass")))
}
