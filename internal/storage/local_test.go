package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
)

func TestLocalArchive(t *testing.T) {
	archive := NewLocalArchive(t.TempDir())
	ctx := context.Background()

	key := "webhooks/stripe/evt_1.json"
	payload := []byte(`{"id":"evt_1"}`)

	exists, err := archive.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, archive.Put(ctx, key, payload))

	exists, err = archive.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := archive.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, archive.Delete(ctx, key))
	exists, err = archive.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewArchiveDrivers(t *testing.T) {
	a, err := NewArchive(&config.StorageConfig{Driver: "local", ArchivePath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalArchive{}, a)

	_, err = NewArchive(&config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
