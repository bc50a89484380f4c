package models

import "time"

// DeletedText replaces the body of a soft-deleted message.
const DeletedText = "[Message deleted]"

// Message is a single chat message. Every message of a conversation with a
// company lives under that company's partition, regardless of who authored it;
// direction is derived by comparing sender/recipient to the viewer.
type Message struct {
	ID          string     `db:"id" json:"id"`
	PartitionID string     `db:"partition_id" json:"partition_id"`
	SenderID    string     `db:"sender_id" json:"sender_id"`
	SenderEmail string     `db:"sender_email" json:"sender_email,omitempty"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	Text        string     `db:"text" json:"text"`
	Deleted     bool       `db:"deleted" json:"deleted"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy   string     `db:"deleted_by" json:"deleted_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// InboxEvent is broadcast through inbox websocket subscriptions.
type InboxEvent struct {
	Type      string   `json:"type"`
	Partition string   `json:"partition"`
	Message   *Message `json:"message,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
}
