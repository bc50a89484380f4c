package inbox

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"nocta-service/internal/models"
	"nocta-service/internal/repositories"
)

const watermarkKeyFormat = "lastSeenMsg_%s_%s"

// Tracker maintains per-(owner, counterparty) last-seen watermarks in durable
// key-value storage and classifies threads as read or unread against them.
// Each party of a conversation tracks its own read state under its own key.
type Tracker struct {
	kv repositories.KeyValueStore
}

// NewTracker constructs a Tracker.
func NewTracker(kv repositories.KeyValueStore) *Tracker {
	return &Tracker{kv: kv}
}

func watermarkKey(ownerID, counterpartyID string) string {
	return fmt.Sprintf(watermarkKeyFormat, ownerID, counterpartyID)
}

// Watermark reads the last-seen epoch seconds for a pair. A missing or
// unparseable value is watermark zero.
func (t *Tracker) Watermark(ctx context.Context, ownerID, counterpartyID string) (int64, error) {
	value, ok, err := t.kv.Get(ctx, watermarkKey(ownerID, counterpartyID))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, nil
	}
	return seconds, nil
}

// MarkRead unconditionally overwrites the watermark with the given instant.
// Called when a thread is opened; messages arriving while the thread stays
// open are not tracked separately.
func (t *Tracker) MarkRead(ctx context.Context, ownerID, counterpartyID string, now time.Time) error {
	return t.kv.Set(ctx, watermarkKey(ownerID, counterpartyID), strconv.FormatInt(now.Unix(), 10))
}

// IsUnread reports whether the thread's latest message postdates the viewer's
// watermark and was authored by the counterparty. A thread whose latest
// message the viewer sent is always read. Watermark read failures classify as
// unread so a stale badge errs toward visibility.
func (t *Tracker) IsUnread(ctx context.Context, viewerID string, thread models.Thread) bool {
	if thread.Timestamp.IsZero() {
		return false
	}
	if thread.LastSender == viewerID {
		return false
	}
	watermark, err := t.Watermark(ctx, viewerID, thread.ID)
	if err != nil {
		log.Printf("watermark read failed for %s/%s: %v", viewerID, thread.ID, err)
		return true
	}
	return thread.Timestamp.Unix() > watermark
}

// Annotate recomputes the unread flag on every thread and returns the unread
// count for the badge.
func (t *Tracker) Annotate(ctx context.Context, viewerID string, threads []models.Thread) int {
	count := 0
	for i := range threads {
		threads[i].Unread = t.IsUnread(ctx, viewerID, threads[i])
		if threads[i].Unread {
			count++
		}
	}
	return count
}
