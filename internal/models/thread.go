package models

import "time"

// Thread is a derived, non-persisted summary of the latest message exchanged
// with one counterparty. It is recomputed in full on every aggregation pass.
type Thread struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LastMsg    string    `json:"last_msg"`
	LastSender string    `json:"last_sender"`
	Timestamp  time.Time `json:"timestamp"`
	Unread     bool      `json:"unread"`
}
