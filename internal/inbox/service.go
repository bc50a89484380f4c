package inbox

import (
	"context"

	"nocta-service/internal/models"
	"nocta-service/internal/repositories"
)

// Service derives the sorted, unread-annotated thread list for a viewer.
// The same aggregation serves both roles; only the partition scope differs.
type Service struct {
	messages repositories.MessageRepository
	profiles repositories.ProfileRepository
	tracker  *Tracker
}

// NewService constructs a Service.
func NewService(messages repositories.MessageRepository, profiles repositories.ProfileRepository, tracker *Tracker) *Service {
	return &Service{messages: messages, profiles: profiles, tracker: tracker}
}

// Tracker exposes the unread-state tracker for mark-read calls.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// Threads recomputes the full thread list for the viewer and returns it along
// with the unread count. An empty scope yields an empty list, not an error.
// Callers without a resolved identity get nothing; they must not error before
// authentication settles.
func (s *Service) Threads(ctx context.Context, viewerID, role string) ([]models.Thread, int, error) {
	if viewerID == "" {
		return []models.Thread{}, 0, nil
	}

	scope := ScopeFor(role, viewerID, s.messages, s.profiles)
	snapshot, err := scope.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}

	threads := Aggregate(viewerID, snapshot)
	if err := s.resolveNames(ctx, threads); err != nil {
		return nil, 0, err
	}
	unread := s.tracker.Annotate(ctx, viewerID, threads)
	return threads, unread, nil
}

// Partitions lists the partition ids a viewer's live inbox subscribes to.
func (s *Service) Partitions(ctx context.Context, viewerID, role string) ([]string, error) {
	return ScopeFor(role, viewerID, s.messages, s.profiles).Partitions(ctx)
}

// resolveNames fills thread names from one bulk profile fetch, falling back
// through the denormalized name fields and finally the raw id.
func (s *Service) resolveNames(ctx context.Context, threads []models.Thread) error {
	if len(threads) == 0 {
		return nil
	}
	ids := make([]string, 0, len(threads))
	for _, thread := range threads {
		ids = append(ids, thread.ID)
	}

	profiles, err := s.profiles.BulkGet(ctx, ids)
	if err != nil {
		return err
	}
	nameByID := make(map[string]string, len(profiles))
	for _, profile := range profiles {
		nameByID[profile.ID] = profile.Name()
	}

	for i := range threads {
		if name, ok := nameByID[threads[i].ID]; ok {
			threads[i].Name = name
		}
	}
	return nil
}
