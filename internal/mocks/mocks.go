package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"nocta-service/internal/functions"
	"nocta-service/internal/models"
	"nocta-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, partitionID, senderID, senderEmail, recipientID, text string) (models.Message, error) {
	args := m.Called(ctx, partitionID, senderID, senderEmail, recipientID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) PartitionMessages(ctx context.Context, partitionID string) ([]models.Message, error) {
	args := m.Called(ctx, partitionID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ConversationMessages(ctx context.Context, partitionID, viewerID, counterpartyID string) ([]models.Message, error) {
	args := m.Called(ctx, partitionID, viewerID, counterpartyID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, partitionID, messageID string) (models.Message, error) {
	args := m.Called(ctx, partitionID, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) SoftDelete(ctx context.Context, partitionID, messageID, deleterID string) error {
	args := m.Called(ctx, partitionID, messageID, deleterID)
	return args.Error(0)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) Get(ctx context.Context, id string) (models.Profile, error) {
	args := m.Called(ctx, id)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) BulkGet(ctx context.Context, ids []string) ([]models.Profile, error) {
	args := m.Called(ctx, ids)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *ProfileRepositoryMock) Upsert(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) CompanyIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *ProfileRepositoryMock) SetVerified(ctx context.Context, id string, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) Create(ctx context.Context, event models.Event) (models.Event, error) {
	args := m.Called(ctx, event)
	var created models.Event
	if val := args.Get(0); val != nil {
		created = val.(models.Event)
	}
	return created, args.Error(1)
}

func (m *EventRepositoryMock) Update(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepositoryMock) Get(ctx context.Context, id string) (models.Event, error) {
	args := m.Called(ctx, id)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) ListPublished(ctx context.Context, now time.Time) ([]models.Event, error) {
	args := m.Called(ctx, now)
	var events []models.Event
	if val := args.Get(0); val != nil {
		events = val.([]models.Event)
	}
	return events, args.Error(1)
}

func (m *EventRepositoryMock) ListByCompany(ctx context.Context, companyID string) ([]models.Event, error) {
	args := m.Called(ctx, companyID)
	var events []models.Event
	if val := args.Get(0); val != nil {
		events = val.([]models.Event)
	}
	return events, args.Error(1)
}

func (m *EventRepositoryMock) ArchiveExpired(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *EventRepositoryMock) RewriteVideoURLPrefix(ctx context.Context, oldPrefix, newPrefix string) (int, error) {
	args := m.Called(ctx, oldPrefix, newPrefix)
	return args.Int(0), args.Error(1)
}

func (m *EventRepositoryMock) ListWithImages(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	var events []models.Event
	if val := args.Get(0); val != nil {
		events = val.([]models.Event)
	}
	return events, args.Error(1)
}

type KeyValueStoreMock struct {
	mock.Mock
}

func (m *KeyValueStoreMock) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *KeyValueStoreMock) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KeyValueStoreMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type AuthVerifierMock struct {
	mock.Mock
}

func (m *AuthVerifierMock) VerifyToken(ctx context.Context, token string) (functions.Identity, error) {
	args := m.Called(ctx, token)
	var identity functions.Identity
	if val := args.Get(0); val != nil {
		identity = val.(functions.Identity)
	}
	return identity, args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ repositories.EventRepository = (*EventRepositoryMock)(nil)
var _ repositories.KeyValueStore = (*KeyValueStoreMock)(nil)
var _ functions.AuthVerifier = (*AuthVerifierMock)(nil)
