package store

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/db"
)

func TestGetJWTSecretStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	raw, err := hex.DecodeString(secret)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	for range 3 {
		again, err := GetJWTSecret(ctx, database)
		require.NoError(t, err)
		assert.Equal(t, secret, again)
	}

	var rows int
	require.NoError(t, database.Get(&rows, `SELECT COUNT(*) FROM settings WHERE key = 'jwt_secret'`))
	assert.Equal(t, 1, rows)
}

func TestGetJWTSecretKeepsStoredValue(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := database.Exec(database.Rebind(`INSERT INTO settings (key, value) VALUES ('jwt_secret', ?)`), "configured-elsewhere")
	require.NoError(t, err)

	secret, err := GetJWTSecret(context.Background(), database)
	require.NoError(t, err)
	assert.Equal(t, "configured-elsewhere", secret)
}
