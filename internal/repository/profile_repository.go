package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/payment-reminder/internal/domain"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.OwnerProfile, error) {
	query := `
		SELECT id,
			COALESCE(full_name, '') AS full_name,
			COALESCE(email, '') AS email,
			COALESCE(telegram_chat_id, '') AS telegram_chat_id,
			COALESCE(phone, '') AS phone,
			COALESCE(timezone, '') AS timezone
		FROM profiles
		WHERE id = $1
	`

	var profile domain.OwnerProfile
	if err := r.db.GetContext(ctx, &profile, query, ownerID); err != nil {
		return nil, err
	}

	return &profile, nil
}
