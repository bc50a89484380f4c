package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nocta-service/internal/models"
)

type memKV struct {
	values map[string]string
}

func newMemKV() *memKV {
	return &memKV{values: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("storage unavailable")
}

func (failingKV) Delete(context.Context, string) error {
	return errors.New("storage unavailable")
}

func thread(id, lastSender string, ts time.Time) models.Thread {
	return models.Thread{ID: id, LastSender: lastSender, Timestamp: ts}
}

func TestIsUnreadWithoutWatermark(t *testing.T) {
	tracker := NewTracker(newMemKV())
	ctx := context.Background()

	// Latest message authored by the counterparty, no watermark yet.
	assert.True(t, tracker.IsUnread(ctx, "user-a", thread("company-b", "company-b", at(200))))

	// Latest message authored by the viewer is always read.
	assert.False(t, tracker.IsUnread(ctx, "company-b", thread("user-a", "company-b", at(200))))
}

func TestSelfAuthoredNeverUnread(t *testing.T) {
	tracker := NewTracker(newMemKV())
	ctx := context.Background()

	// Independent of watermark state.
	assert.False(t, tracker.IsUnread(ctx, "user-a", thread("company-b", "user-a", at(500))))
	require.NoError(t, tracker.MarkRead(ctx, "user-a", "company-b", at(1)))
	assert.False(t, tracker.IsUnread(ctx, "user-a", thread("company-b", "user-a", at(500))))
}

func TestMarkReadSuppressesOlderMessages(t *testing.T) {
	tracker := NewTracker(newMemKV())
	ctx := context.Background()

	th := thread("company-b", "company-b", at(200))
	assert.True(t, tracker.IsUnread(ctx, "user-a", th))

	require.NoError(t, tracker.MarkRead(ctx, "user-a", "company-b", at(250)))

	// Monotonic: stays read across repeated aggregation passes.
	for i := 0; i < 3; i++ {
		assert.False(t, tracker.IsUnread(ctx, "user-a", th))
	}

	// A newer counterparty message flips it back to unread.
	assert.True(t, tracker.IsUnread(ctx, "user-a", thread("company-b", "company-b", at(300))))
}

func TestWatermarkKeysAreDisjointPerParty(t *testing.T) {
	tracker := NewTracker(newMemKV())
	ctx := context.Background()

	require.NoError(t, tracker.MarkRead(ctx, "user-a", "company-b", at(250)))

	// Marking read as A must not affect B's read state of the same conversation.
	assert.True(t, tracker.IsUnread(ctx, "company-b", thread("user-a", "user-a", at(200))))

	wm, err := tracker.Watermark(ctx, "company-b", "user-a")
	require.NoError(t, err)
	assert.Zero(t, wm)
}

func TestPendingTimestampIsNeverUnread(t *testing.T) {
	tracker := NewTracker(newMemKV())
	assert.False(t, tracker.IsUnread(context.Background(), "user-a", thread("company-b", "company-b", time.Time{})))
}

func TestWatermarkReadFailureFailsOpen(t *testing.T) {
	tracker := NewTracker(failingKV{})
	assert.True(t, tracker.IsUnread(context.Background(), "user-a", thread("company-b", "company-b", at(200))))
}

func TestUnparseableWatermarkTreatedAsZero(t *testing.T) {
	kv := newMemKV()
	kv.values["lastSeenMsg_user-a_company-b"] = "garbage"
	tracker := NewTracker(kv)

	wm, err := tracker.Watermark(context.Background(), "user-a", "company-b")
	require.NoError(t, err)
	assert.Zero(t, wm)
}

func TestAnnotateCountsUnreadThreads(t *testing.T) {
	tracker := NewTracker(newMemKV())
	ctx := context.Background()
	require.NoError(t, tracker.MarkRead(ctx, "user-a", "company-c", at(400)))

	threads := []models.Thread{
		thread("company-b", "company-b", at(200)),
		thread("company-c", "company-c", at(300)),
		thread("company-d", "user-a", at(100)),
	}

	count := tracker.Annotate(ctx, "user-a", threads)
	assert.Equal(t, 1, count)
	assert.True(t, threads[0].Unread)
	assert.False(t, threads[1].Unread)
	assert.False(t, threads[2].Unread)
}
