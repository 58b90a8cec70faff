package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/repository"
)

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates a Postgres-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const query = `
	SELECT id, full_name, email, visa_type, employment_status, opt_active, stem_opt_active,
	       entry_date, graduation_date, transfer_date, created_at, updated_at
	FROM profiles
	WHERE id = $1
	`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&p.VisaType,
		&p.EmploymentStatus,
		&p.OPTActive,
		&p.STEMOPTActive,
		&p.EntryDate,
		&p.GraduationDate,
		&p.TransferDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storeError("get profile", err)
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	if profile == nil || profile.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO profiles (id, full_name, email, visa_type, employment_status, opt_active, stem_opt_active,
	                      entry_date, graduation_date, transfer_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET full_name = EXCLUDED.full_name,
		email = EXCLUDED.email,
		visa_type = EXCLUDED.visa_type,
		employment_status = EXCLUDED.employment_status,
		opt_active = EXCLUDED.opt_active,
		stem_opt_active = EXCLUDED.stem_opt_active,
		entry_date = EXCLUDED.entry_date,
		graduation_date = EXCLUDED.graduation_date,
		transfer_date = EXCLUDED.transfer_date,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Email,
		string(profile.NormalizedVisaType()),
		profile.EmploymentStatus,
		profile.OPTActive,
		profile.STEMOPTActive,
		nullDate(profile.EntryDate),
		nullDate(profile.GraduationDate),
		nullDate(profile.TransferDate),
		nullTime(profile.CreatedAt),
	).Scan(&profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return storeError("upsert profile", err)
	}
	return nil
}
