package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
)

func TestSQLStoreRoundTrip(t *testing.T) {
	s := NewSQLStore(db.NewTestDB(t))
	ctx := context.Background()

	ref, err := s.Put(ctx, []byte("fake image data"), "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	obj, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.MIME)
	assert.Equal(t, []byte("fake image data"), obj.Data)

	require.NoError(t, s.Delete(ctx, ref))
	_, err = s.Get(ctx, ref)
	assert.True(t, errors.Is(err, ErrNotFound))

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, ref))
}

func TestSQLStoreRejectsEmpty(t *testing.T) {
	s := NewSQLStore(db.NewTestDB(t))

	_, err := s.Put(context.Background(), nil, "image/png")
	assert.Error(t, err)
}
