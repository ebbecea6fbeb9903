package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domainlens/internal/lookup/models"
	"domainlens/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite

	now   time.Time
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore(24*time.Hour, WithClock(func() time.Time { return s.now }))
}

func (s *InMemoryStoreSuite) entry(registrar string) *models.CacheEntry {
	return &models.CacheEntry{
		Verdict:    models.VerdictRegistered,
		Record:     &models.Record{Domain: "example.com", Registrar: registrar},
		InsertedAt: s.now,
	}
}

func (s *InMemoryStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "example.com", s.entry("Example LLC")))

	got, err := s.store.Get(ctx, "example.com")
	s.Require().NoError(err)
	s.Equal("Example LLC", got.Record.Registrar)
	s.Equal(models.VerdictRegistered, got.Verdict)
}

func (s *InMemoryStoreSuite) TestMissReturnsNotFound() {
	_, err := s.store.Get(context.Background(), "absent.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSetReplaces() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "example.com", s.entry("First")))
	s.Require().NoError(s.store.Set(ctx, "example.com", s.entry("Second")))

	got, err := s.store.Get(ctx, "example.com")
	s.Require().NoError(err)
	s.Equal("Second", got.Record.Registrar)
}

func (s *InMemoryStoreSuite) TestRetentionEvicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "example.com", s.entry("Example LLC")))

	s.now = s.now.Add(23 * time.Hour)
	_, err := s.store.Get(ctx, "example.com")
	s.NoError(err, "entry inside retention must survive")

	s.now = s.now.Add(2 * time.Hour)
	_, err = s.store.Get(ctx, "example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "example.com", s.entry("Example LLC")))
	s.Require().NoError(s.store.Delete(ctx, "example.com"))

	_, err := s.store.Get(ctx, "example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.Delete(ctx, "example.com"), "deleting an absent entry is not an error")
}

func (s *InMemoryStoreSuite) TestStoredEntryIsIsolatedFromCaller() {
	ctx := context.Background()
	e := s.entry("Example LLC")
	s.Require().NoError(s.store.Set(ctx, "example.com", e))
	e.Record = &models.Record{Domain: "example.com", Registrar: "Mutated"}

	got, err := s.store.Get(ctx, "example.com")
	s.Require().NoError(err)
	s.Equal("Example LLC", got.Record.Registrar)
}
