package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/db"
)

func TestRevokedTokenLookup(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "session-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, database, "session-a", time.Now().Add(time.Hour)))

	revoked, err = IsTokenRevoked(ctx, database, "session-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenRevoked(ctx, database, "session-b")
	require.NoError(t, err)
	assert.False(t, revoked, "revoking one session must not touch another")
}

func TestRevokeTokenTwiceKeepsFirstExpiry(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	first := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)

	require.NoError(t, RevokeToken(ctx, database, "session-a", first))
	require.NoError(t, RevokeToken(ctx, database, "session-a", first.Add(time.Hour)))

	var rows []time.Time
	require.NoError(t, database.Select(&rows,
		database.Rebind(`SELECT expires_at FROM revoked_tokens WHERE jti = ?`), "session-a"))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Equal(first), "got %v, want %v", rows[0], first)
}

func TestRevokeTokenPurgesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := database.Exec(database.Rebind(`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`),
		"stale", time.Now().Add(-time.Hour).UTC())
	require.NoError(t, err)

	require.NoError(t, RevokeToken(ctx, database, "fresh", time.Now().Add(time.Hour)))

	stale, err := IsTokenRevoked(ctx, database, "stale")
	require.NoError(t, err)
	assert.False(t, stale, "expired revocations are dropped once the token itself has expired")

	fresh, err := IsTokenRevoked(ctx, database, "fresh")
	require.NoError(t, err)
	assert.True(t, fresh)
}
