package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/model"
)

func mustCreateUser(t *testing.T, database *sqlx.DB, first, last, email string, isAdmin bool) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, first, last, email, "hash", isAdmin)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Ana", "Novak", " Ana@Example.com", "hash123", false)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.IsAdmin {
		t.Error("expected regular user")
	}

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "hash123", got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := GetUser(ctx, database, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	mustCreateUser(t, database, "Ana", "Novak", "ana@example.com", false)

	_, err := CreateUser(context.Background(), database, "Ana", "Other", "ANA@example.com", "hash", false)
	assert.Error(t, err)
}

func TestGetUserByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	mustCreateUser(t, database, "Alice", "Kovač", "alice@example.com", true)

	user, err := GetUserByEmail(ctx, database, "ALICE@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsAdmin)

	missing, err := GetUserByEmail(ctx, database, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListUsersOrderedByLastThenFirstName(t *testing.T) {
	database := db.NewTestDB(t)
	mustCreateUser(t, database, "Zoe", "Adams", "zoe@example.com", false)
	mustCreateUser(t, database, "Bob", "Zupan", "bob@example.com", false)
	mustCreateUser(t, database, "Amy", "Adams", "amy@example.com", false)

	users, err := ListUsers(context.Background(), database)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "amy@example.com", users[0].Email)
	assert.Equal(t, "zoe@example.com", users[1].Email)
	assert.Equal(t, "bob@example.com", users[2].Email)
}

func TestSetUserAdminSyncsRoles(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, database, "Ana", "Novak", "ana@example.com", false)

	roles, err := UserRoles(ctx, database, u.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	ok, err := SetUserAdmin(ctx, database, u.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)

	roles, err = UserRoles(ctx, database, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleAdmin}, roles)

	total, admins, err := CountUsers(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, admins)

	ok, err = SetUserAdmin(ctx, database, u.ID, false)
	require.NoError(t, err)
	assert.True(t, ok)

	roles, err = UserRoles(ctx, database, u.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	ok, err = SetUserAdmin(ctx, database, 9999, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, database, "Ana", "Novak", "ana@example.com", false)

	require.NoError(t, UpdateUserPassword(ctx, database, u.ID, "newhash"))

	got, err := GetUser(ctx, database, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
}
