package inbox

import (
	"context"

	"nocta-service/internal/models"
	"nocta-service/internal/repositories"
)

// Scope is the partition resolution strategy for one viewer: a company reads
// its own partition, a private user fans out across every company partition.
type Scope interface {
	// Snapshot returns every message in the viewer's conversation scope.
	Snapshot(ctx context.Context) ([]models.Message, error)
	// Partitions lists the partition ids the viewer's inbox must watch for
	// live updates.
	Partitions(ctx context.Context) ([]string, error)
}

// ScopeFor picks the strategy matching the viewer's role.
func ScopeFor(role, viewerID string, messages repositories.MessageRepository, profiles repositories.ProfileRepository) Scope {
	if role == models.RoleCompany {
		return &CompanyScope{messages: messages, companyID: viewerID}
	}
	return &UserScope{messages: messages, profiles: profiles, userID: viewerID}
}

// CompanyScope reads the single partition the company owns. Every message in
// it involves the company, so no filtering is needed.
type CompanyScope struct {
	messages  repositories.MessageRepository
	companyID string
}

func (s *CompanyScope) Snapshot(ctx context.Context) ([]models.Message, error) {
	return s.messages.PartitionMessages(ctx, s.companyID)
}

func (s *CompanyScope) Partitions(ctx context.Context) ([]string, error) {
	return []string{s.companyID}, nil
}

// UserScope visits every company partition and keeps the messages where the
// user is sender or recipient. This does not scale past a small number of
// companies; clients only see the merged result, and partitions may be
// visited in any order.
type UserScope struct {
	messages repositories.MessageRepository
	profiles repositories.ProfileRepository
	userID   string
}

func (s *UserScope) Snapshot(ctx context.Context) ([]models.Message, error) {
	companyIDs, err := s.profiles.CompanyIDs(ctx)
	if err != nil {
		return nil, err
	}

	var relevant []models.Message
	for _, companyID := range companyIDs {
		msgs, err := s.messages.PartitionMessages(ctx, companyID)
		if err != nil {
			return nil, err
		}
		for _, msg := range msgs {
			if msg.SenderID == s.userID || msg.RecipientID == s.userID {
				relevant = append(relevant, msg)
			}
		}
	}
	return relevant, nil
}

func (s *UserScope) Partitions(ctx context.Context) ([]string, error) {
	return s.profiles.CompanyIDs(ctx)
}
