package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"nocta-service/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

const eventColumns = `id, company_id, title, description, venue_name, starts_at, ends_at, image_url, video_url, ticket_url, published, created_at`

// EventRepository abstracts event catalog persistence.
type EventRepository interface {
	Create(ctx context.Context, event models.Event) (models.Event, error)
	Update(ctx context.Context, event models.Event) error
	Get(ctx context.Context, id string) (models.Event, error)
	ListPublished(ctx context.Context, now time.Time) ([]models.Event, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Event, error)
	ArchiveExpired(ctx context.Context, cutoff time.Time) (int, error)
	RewriteVideoURLPrefix(ctx context.Context, oldPrefix, newPrefix string) (int, error)
	ListWithImages(ctx context.Context) ([]models.Event, error)
}

// EventRepo is a sqlx implementation of EventRepository.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create stores a new event with a store-generated id and timestamp.
func (r *EventRepo) Create(ctx context.Context, event models.Event) (models.Event, error) {
	event.ID = uuid.NewString()
	var created models.Event
	err := r.db.QueryRowxContext(ctx, `INSERT INTO events (id, company_id, title, description, venue_name, starts_at, ends_at, image_url, video_url, ticket_url, published)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+eventColumns,
		event.ID, event.CompanyID, event.Title, event.Description, event.VenueName,
		event.StartsAt, event.EndsAt, event.ImageURL, event.VideoURL, event.TicketURL, event.Published).
		StructScan(&created)
	return created, err
}

// Update rewrites the mutable fields of an event.
func (r *EventRepo) Update(ctx context.Context, event models.Event) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events
        SET title=$1, description=$2, venue_name=$3, starts_at=$4, ends_at=$5,
            image_url=$6, video_url=$7, ticket_url=$8, published=$9
        WHERE id=$10 AND company_id=$11`,
		event.Title, event.Description, event.VenueName, event.StartsAt, event.EndsAt,
		event.ImageURL, event.VideoURL, event.TicketURL, event.Published,
		event.ID, event.CompanyID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Get fetches one event by id.
func (r *EventRepo) Get(ctx context.Context, id string) (models.Event, error) {
	var event models.Event
	err := r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

// ListPublished returns published events that have not yet ended.
func (r *EventRepo) ListPublished(ctx context.Context, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM events
        WHERE published = TRUE AND ends_at >= $1
        ORDER BY starts_at ASC`, now)
	return events, err
}

// ListByCompany returns every event a company owns, drafts included.
func (r *EventRepo) ListByCompany(ctx context.Context, companyID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM events
        WHERE company_id=$1 ORDER BY starts_at DESC`, companyID)
	return events, err
}

// ArchiveExpired moves events that ended before the cutoff into the archive
// table and reports how many were moved. Delete and insert run as one
// statement against one snapshot, so a row committed mid-sweep can never be
// deleted without also being archived.
func (r *EventRepo) ArchiveExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `WITH moved AS (
            DELETE FROM events WHERE ends_at < $1
            RETURNING `+eventColumns+`
        )
        INSERT INTO archived_events (id, company_id, title, description, venue_name, starts_at, ends_at, image_url, video_url, ticket_url, published, created_at)
        SELECT `+eventColumns+` FROM moved
        ON CONFLICT (id) DO NOTHING`, cutoff)
	if err != nil {
		return 0, err
	}
	moved, err := res.RowsAffected()
	return int(moved), err
}

// RewriteVideoURLPrefix replaces a legacy URL prefix on every matching event
// video URL and returns the number of rewritten rows.
func (r *EventRepo) RewriteVideoURLPrefix(ctx context.Context, oldPrefix, newPrefix string) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE events
        SET video_url = $2 || substring(video_url FROM char_length($1) + 1)
        WHERE video_url LIKE $1 || '%'`, oldPrefix, newPrefix)
	if err != nil {
		return 0, err
	}
	count, err := res.RowsAffected()
	return int(count), err
}

// ListWithImages returns events carrying an image URL, for encoding audits.
func (r *EventRepo) ListWithImages(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM events
        WHERE image_url <> '' ORDER BY created_at ASC`)
	return events, err
}
