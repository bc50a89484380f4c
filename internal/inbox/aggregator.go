package inbox

import (
	"sort"

	"nocta-service/internal/models"
)

// Counterparty resolves the other side of a message relative to the viewer:
// the sender when the viewer did not author it, otherwise the recipient.
// Returns "" when no counterparty resolves (missing ids, or the degenerate
// case of a message sent to oneself).
func Counterparty(viewerID string, msg models.Message) string {
	if msg.SenderID != "" && msg.SenderID == msg.RecipientID {
		return ""
	}
	if msg.SenderID != viewerID {
		return msg.SenderID
	}
	return msg.RecipientID
}

// Aggregate folds a flat partition snapshot into one thread per counterparty,
// each holding the chronologically latest message. Last-write-wins by
// timestamp; a message with a pending (zero) timestamp only replaces a
// candidate that also lacks one. Output is sorted newest first, pending
// timestamps last, stable with respect to snapshot order.
func Aggregate(viewerID string, msgs []models.Message) []models.Thread {
	if viewerID == "" {
		return nil
	}

	latest := make(map[string]models.Message)
	var order []string
	for _, msg := range msgs {
		cp := Counterparty(viewerID, msg)
		if cp == "" {
			continue
		}
		current, ok := latest[cp]
		if !ok {
			latest[cp] = msg
			order = append(order, cp)
			continue
		}
		if newerThan(msg, current) {
			latest[cp] = msg
		}
	}

	threads := make([]models.Thread, 0, len(order))
	for _, cp := range order {
		msg := latest[cp]
		threads = append(threads, models.Thread{
			ID:         cp,
			Name:       cp,
			LastMsg:    msg.Text,
			LastSender: msg.SenderID,
			Timestamp:  msg.CreatedAt,
		})
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Timestamp.After(threads[j].Timestamp)
	})
	return threads
}

// newerThan reports whether candidate should displace current as the latest
// message of a thread. A pending timestamp is not comparable and only wins
// against another pending one.
func newerThan(candidate, current models.Message) bool {
	if candidate.CreatedAt.IsZero() {
		return current.CreatedAt.IsZero()
	}
	if current.CreatedAt.IsZero() {
		return true
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}
