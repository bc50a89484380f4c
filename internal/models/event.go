package models

import "time"

// Event is a nightlife event authored by a company account.
type Event struct {
	ID          string    `db:"id" json:"id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	VenueName   string    `db:"venue_name" json:"venue_name,omitempty"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time `db:"ends_at" json:"ends_at"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	VideoURL    string    `db:"video_url" json:"video_url,omitempty"`
	TicketURL   string    `db:"ticket_url" json:"ticket_url,omitempty"`
	Published   bool      `db:"published" json:"published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the event ended before the given instant.
func (e Event) Expired(now time.Time) bool {
	return !e.EndsAt.IsZero() && e.EndsAt.Before(now)
}
