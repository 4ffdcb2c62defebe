package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, UserInput{Name: "Head", Email: "head@school.test"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The password field is required.", verr.Fields["password"])

	_, err = svc.Create(ctx, admin, UserInput{Name: "Head", Email: "head@school.test", Password: "short"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The password field must be at least 8 characters.", verr.Fields["password"])

	// 40 characters, 80 bytes
	_, err = svc.Create(ctx, admin, UserInput{Name: "Head", Email: "head@school.test", Password: strings.Repeat("é", 40)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The password field must not be greater than 72 bytes.", verr.Fields["password"])

	head, err := svc.Create(ctx, admin, UserInput{Name: "Head", Email: " Head@School.test ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "head@school.test", head.Email)
	assert.NotEqual(t, "correct-horse", head.PasswordHash)

	_, err = svc.Create(ctx, admin, UserInput{Name: "Copy", Email: "head@school.test", Password: "correct-horse"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The email has already been taken.", verr.Fields["email"])

	_, err = svc.Update(ctx, admin, head.ID, UserInput{Name: "Head", Email: "head@school.test", Password: strings.Repeat("密", 30)})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")

	updated, err := svc.Update(ctx, admin, head.ID, UserInput{Name: "Headteacher", Email: "head@school.test"})
	require.NoError(t, err)
	assert.Equal(t, "Headteacher", updated.Name)

	_, err = svc.Authenticate(ctx, "head@school.test", "correct-horse")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "head@school.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@school.test", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: head.ID}, head.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, Actor{UserID: head.ID + 100}, head.ID))
	_, err = svc.Find(ctx, head.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdminOnlyOnEmptyTable(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "Admin", "admin@school.test", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(ctx, "Admin", "admin@school.test", "bootstrap-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "Other", "other@school.test", "bootstrap-pass")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := svc.Authenticate(ctx, "ADMIN@school.test", "bootstrap-pass")
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.Name)
}
