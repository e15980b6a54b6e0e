package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("backup-secret", time.Hour)

	token, expiresAt, err := signer.Generate("run-42", "dojo_backup_20260828.csv")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "run-42", jobID)
	require.Equal(t, "dojo_backup_20260828.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("backup-secret", time.Hour)

	token, _, err := signer.Generate("run-42", "dojo_backup_20260828.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "run-43"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)

	_, _, _, err = NewSignedURLSigner("other-secret", time.Hour).Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("backup-secret", 10*time.Millisecond)

	token, _, err := signer.Generate("run-42", "dojo_backup_20260828.csv")
	require.NoError(t, err)
	time.Sleep(25 * time.Millisecond)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	// Cleanup still needs the filename out of expired tokens.
	jobID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "run-42", jobID)
	require.Equal(t, "dojo_backup_20260828.csv", path)
}
