// Package service implements the claim handshake: the item lifecycle, the
// claim registry and the per-claim message threads. Every operation takes the
// acting user's ID explicitly; nothing is read from request state.
package service

import (
	"database/sql"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/erazemk/najdeno/internal/blob"
	"github.com/erazemk/najdeno/internal/handshake"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/notify"
)

// Options configures a Service. Zero fields get working defaults.
type Options struct {
	Blobs    blob.Store
	Codec    handshake.Codec
	Tokens   *handshake.Cache
	Notifier notify.Sink
	Metrics  *metrics.Metrics
	Now      func() time.Time

	// Location is the zone message times are displayed in. Defaults to
	// time.Local.
	Location *time.Location
}

// Service holds the collaborators the core operations need.
type Service struct {
	db       *sql.DB
	blobs    blob.Store
	codec    handshake.Codec
	tokens   *handshake.Cache
	notifier notify.Sink
	metrics  *metrics.Metrics
	now      func() time.Time
	location *time.Location

	qr singleflight.Group
}

// New creates a Service over db.
func New(db *sql.DB, opts Options) *Service {
	s := &Service{
		db:       db,
		blobs:    opts.Blobs,
		codec:    opts.Codec,
		tokens:   opts.Tokens,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		now:      opts.Now,
		location: opts.Location,
	}
	if s.blobs == nil {
		s.blobs = blob.NewSQLStore(db)
	}
	if s.codec == nil {
		s.codec = handshake.QRCodec{}
	}
	if s.notifier == nil {
		s.notifier = notify.NewStoreSink(db)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.location == nil {
		s.location = time.Local
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}
