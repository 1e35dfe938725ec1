package service

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/handshake"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

type event struct {
	recipient, claim, text string
}

type recordingSink struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingSink) Record(_ context.Context, recipient, claim, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{recipient, claim, text})
}

func (r *recordingSink) For(recipient string) []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event
	for _, e := range r.events {
		if e.recipient == recipient {
			out = append(out, e)
		}
	}
	return out
}

type countingCodec struct {
	calls atomic.Int32
	last  atomic.Value
}

func (c *countingCodec) Encode(content string) ([]byte, string, error) {
	c.calls.Add(1)
	c.last.Store(content)
	// Give concurrent callers time to pile up on the same flight.
	time.Sleep(20 * time.Millisecond)
	return []byte("png:" + content), "image/png", nil
}

type fixture struct {
	svc    *Service
	db     *sql.DB
	sink   *recordingSink
	codec  *countingCodec
	finder string
	seeker string
	other  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	f := &fixture{
		db:    database,
		sink:  &recordingSink{},
		codec: &countingCodec{},
	}
	f.svc = New(database, Options{
		Codec:    f.codec,
		Tokens:   handshake.NewCache(time.Minute),
		Notifier: f.sink,
	})
	f.finder = f.user(t, "finder", "Wallet Hero")
	f.seeker = f.user(t, "seeker", "")
	f.other = f.user(t, "other", "")
	return f
}

func (f *fixture) user(t *testing.T, username, displayName string) string {
	t.Helper()
	u, err := store.CreateUser(context.Background(), f.db, username, displayName, "hash")
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) item(t *testing.T, title string) *model.Item {
	t.Helper()
	item, err := f.svc.CreateItem(context.Background(), f.finder, ItemInput{
		Title:        title,
		Description:  "found near the fountain",
		Neighborhood: "Center",
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) claim(t *testing.T, seeker, itemID string) *model.Claim {
	t.Helper()
	c, created, err := f.svc.SubmitClaim(context.Background(), seeker, itemID, "it has a red sticker")
	require.NoError(t, err)
	require.True(t, created)
	return c
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
