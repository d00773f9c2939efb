package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jimezsa/jobmail/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	records []models.SentRecord
	loads   int
	addErr  error
	loadErr error
}

func (m *memoryStore) SentEmails(context.Context) ([]models.SentRecord, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]models.SentRecord(nil), m.records...), nil
}

func (m *memoryStore) AddSentEmail(_ context.Context, record models.SentRecord) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.records = append(m.records, record)
	return nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newLedger(store Store) (*Ledger, *clock) {
	c := &clock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	return New(store, WithClock(c.Now)), c
}

func TestCanSendRejectsExactEmailAfterMarkSent(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	l, _ := newLedger(store)

	require.NoError(t, l.MarkSent(ctx, Entry{Email: "a@x.com", Domain: "x.com", Company: "X"}))

	ok, reason, err := l.CanSend(ctx, "A@x.com ", "x.com", "X")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "already sent")
	require.Len(t, store.records, 1)
	assert.Equal(t, "2025-03-10", store.records[0].DateSent)
}

func TestCanSendDomainCooldown(t *testing.T) {
	ctx := context.Background()
	l, c := newLedger(&memoryStore{})

	require.NoError(t, l.MarkSent(ctx, Entry{Email: "a@x.com", Domain: "x.com", Company: "X"}))

	ok, reason, err := l.CanSend(ctx, "b@x.com", "X.com", "Other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "x.com")

	c.now = c.now.AddDate(0, 0, 4)
	ok, _, err = l.CanSend(ctx, "b@x.com", "x.com", "Other")
	require.NoError(t, err)
	assert.False(t, ok, "day 4 is still inside the cooldown")

	c.now = c.now.AddDate(0, 0, 2)
	ok, reason, err = l.CanSend(ctx, "b@x.com", "x.com", "Other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestCanSendCompanySameDay(t *testing.T) {
	ctx := context.Background()
	l, c := newLedger(&memoryStore{})

	require.NoError(t, l.MarkSent(ctx, Entry{Email: "a@one.com", Domain: "one.com", Company: "Acme"}))

	ok, reason, err := l.CanSend(ctx, "b@two.com", "two.com", "ACME ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "Acme")

	c.now = c.now.AddDate(0, 0, 1)
	ok, _, err = l.CanSend(ctx, "b@two.com", "two.com", "Acme")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanSendIgnoresEmptyCompanyAndDomain(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(&memoryStore{})

	require.NoError(t, l.MarkSent(ctx, Entry{Email: "a@one.com"}))

	ok, _, err := l.CanSend(ctx, "b@two.com", "", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanSendSkipsUnparseableDatesForCooldownOnly(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{records: []models.SentRecord{
		{Email: "old@x.com", Domain: "x.com", Company: "X", DateSent: "not a date"},
	}}
	l, _ := newLedger(store)

	ok, _, err := l.CanSend(ctx, "new@x.com", "x.com", "X")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, reason, err := l.CanSend(ctx, "old@x.com", "x.com", "X")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "already sent")
}

func TestCanSendAcceptsTimestampDates(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{records: []models.SentRecord{
		{Email: "old@x.com", Domain: "x.com", DateSent: "2025-03-08T17:30:00Z"},
	}}
	l, _ := newLedger(store)

	ok, reason, err := l.CanSend(ctx, "new@x.com", "x.com", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "2d ago")
}

func TestLedgerLoadsLazilyAndInvalidates(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	l, _ := newLedger(store)
	assert.Equal(t, 0, store.loads)

	_, _, err := l.CanSend(ctx, "a@x.com", "x.com", "X")
	require.NoError(t, err)
	_, _, err = l.CanSend(ctx, "a@x.com", "x.com", "X")
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)

	l.Invalidate()
	_, _, err = l.CanSend(ctx, "a@x.com", "x.com", "X")
	require.NoError(t, err)
	assert.Equal(t, 2, store.loads)
}

func TestMarkSentPropagatesStoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	store := &memoryStore{addErr: boom}
	l, _ := newLedger(store)

	err := l.MarkSent(ctx, Entry{Email: "a@x.com", Domain: "x.com"})
	require.ErrorIs(t, err, boom)

	ok, reason, err := l.CanSend(ctx, "a@x.com", "x.com", "X")
	require.NoError(t, err)
	assert.True(t, ok, "a failed write is not cached: %s", reason)
	assert.Empty(t, store.records)
}

func TestCanSendHonoursConfiguredCooldown(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	l := New(&memoryStore{}, WithClock(c.Now), WithCooldownDays(2))

	require.NoError(t, l.MarkSent(ctx, Entry{Email: "a@x.com", Domain: "x.com", Company: "X"}))

	c.now = c.now.AddDate(0, 0, 1)
	ok, reason, err := l.CanSend(ctx, "b@x.com", "x.com", "Other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "cooldown: 2d")

	c.now = c.now.AddDate(0, 0, 1)
	ok, _, err = l.CanSend(ctx, "b@x.com", "x.com", "Other")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanSendPropagatesLoadFailure(t *testing.T) {
	boom := errors.New("unreachable")
	l, _ := newLedger(&memoryStore{loadErr: boom})

	_, _, err := l.CanSend(context.Background(), "a@x.com", "x.com", "X")
	require.ErrorIs(t, err, boom)
}

func TestRememberDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	l, _ := newLedger(store)

	require.NoError(t, l.Remember(ctx, Entry{Email: "a@x.com", Domain: "x.com", Company: "X"}))

	ok, _, err := l.CanSend(ctx, "b@x.com", "x.com", "Y")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.records)
}
