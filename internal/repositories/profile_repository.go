package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"nocta-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `id, role, display_name, company_name, username, email, avatar_url, verified`

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (models.Profile, error)
	BulkGet(ctx context.Context, ids []string) ([]models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) error
	CompanyIDs(ctx context.Context) ([]string, error)
	SetVerified(ctx context.Context, id string, verified bool) error
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get fetches one profile by id.
func (r *ProfileRepo) Get(ctx context.Context, id string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// BulkGet fetches multiple profiles in one query. Missing ids are simply
// absent from the result.
func (r *ProfileRepo) BulkGet(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+profileColumns+` FROM profiles WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	var profiles []models.Profile
	err = r.db.SelectContext(ctx, &profiles, query, args...)
	return profiles, err
}

// Upsert creates or replaces a profile record.
func (r *ProfileRepo) Upsert(ctx context.Context, profile models.Profile) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO profiles (id, role, display_name, company_name, username, email, avatar_url, verified)
        VALUES (:id, :role, :display_name, :company_name, :username, :email, :avatar_url, :verified)
        ON CONFLICT (id) DO UPDATE SET
            role = EXCLUDED.role,
            display_name = EXCLUDED.display_name,
            company_name = EXCLUDED.company_name,
            username = EXCLUDED.username,
            email = EXCLUDED.email,
            avatar_url = EXCLUDED.avatar_url,
            verified = EXCLUDED.verified`, profile)
	return err
}

// CompanyIDs lists every company identity. The private-user inbox fans out
// across all of these partitions.
func (r *ProfileRepo) CompanyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM profiles WHERE role=$1 ORDER BY id`, models.RoleCompany)
	return ids, err
}

// SetVerified flips the verification flag on a company profile.
func (r *ProfileRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET verified=$1 WHERE id=$2`, verified, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProfileNotFound
	}
	return nil
}
