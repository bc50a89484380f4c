package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"nocta-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, partition_id, sender_id, sender_email, recipient_id, text, deleted, deleted_at, deleted_by, created_at`

// MessageRepository defines interactions with the partitioned message store.
type MessageRepository interface {
	Append(ctx context.Context, partitionID, senderID, senderEmail, recipientID, text string) (models.Message, error)
	PartitionMessages(ctx context.Context, partitionID string) ([]models.Message, error)
	ConversationMessages(ctx context.Context, partitionID, viewerID, counterpartyID string) ([]models.Message, error)
	GetMessage(ctx context.Context, partitionID, messageID string) (models.Message, error)
	SoftDelete(ctx context.Context, partitionID, messageID, deleterID string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores a new message under the given partition. The id is store
// generated and the timestamp is assigned by the database.
func (r *MessageRepo) Append(ctx context.Context, partitionID, senderID, senderEmail, recipientID, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (id, partition_id, sender_id, sender_email, recipient_id, text)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+messageColumns,
		uuid.NewString(), partitionID, senderID, senderEmail, recipientID, text).
		StructScan(&msg)
	return msg, err
}

// PartitionMessages returns the full snapshot of one partition in timestamp order.
func (r *MessageRepo) PartitionMessages(ctx context.Context, partitionID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+`
        FROM messages WHERE partition_id=$1 ORDER BY created_at ASC`, partitionID)
	return msgs, err
}

// ConversationMessages returns the messages exchanged between viewer and
// counterparty inside one partition, oldest first.
func (r *MessageRepo) ConversationMessages(ctx context.Context, partitionID, viewerID, counterpartyID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+`
        FROM messages
        WHERE partition_id=$1
        AND ((sender_id=$2 AND recipient_id=$3) OR (sender_id=$3 AND recipient_id=$2))
        ORDER BY created_at ASC`, partitionID, viewerID, counterpartyID)
	return msgs, err
}

// GetMessage retrieves a single message from a partition.
func (r *MessageRepo) GetMessage(ctx context.Context, partitionID, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+`
        FROM messages WHERE partition_id=$1 AND id=$2`, partitionID, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// SoftDelete rewrites the message body with the tombstone text. Participants
// and the original timestamp are preserved so the message keeps its place in
// aggregation ordering. Calling it again on a deleted message is a no-op that
// leaves the first deletion metadata intact.
func (r *MessageRepo) SoftDelete(ctx context.Context, partitionID, messageID, deleterID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages
        SET text=$1,
            deleted=TRUE,
            deleted_at=COALESCE(deleted_at, NOW()),
            deleted_by=CASE WHEN deleted THEN deleted_by ELSE $2 END
        WHERE partition_id=$3 AND id=$4`,
		models.DeletedText, deleterID, partitionID, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
