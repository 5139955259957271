package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/internal/ports/outbound"
)

// ProfileRepository implements the dietary profile repository interface
type ProfileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool, logger *zap.Logger) outbound.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger.Named("profile-repo"),
	}
}

// GetByUserID retrieves a user's dietary profile. A user who has never
// completed onboarding has no row, which is reported as (nil, nil).
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.DietaryProfile, error) {
	query := `
		SELECT user_id, allergies, diets, disliked_ingredients, onboarding_completed, updated_at
		FROM dietary_profiles
		WHERE user_id = $1`

	var (
		id                  uuid.UUID
		allergies           []string
		diets               []string
		disliked            []string
		onboardingCompleted bool
		updatedAt           time.Time
	)

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&id, &allergies, &diets, &disliked, &onboardingCompleted, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to fetch dietary profile",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return profile.Reconstitute(id, allergies, diets, disliked, onboardingCompleted, updatedAt), nil
}

// Upsert creates or replaces the user's dietary profile
func (r *ProfileRepository) Upsert(ctx context.Context, prof *profile.DietaryProfile) error {
	query := `
		INSERT INTO dietary_profiles (user_id, allergies, diets, disliked_ingredients, onboarding_completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			allergies = EXCLUDED.allergies,
			diets = EXCLUDED.diets,
			disliked_ingredients = EXCLUDED.disliked_ingredients,
			onboarding_completed = EXCLUDED.onboarding_completed,
			updated_at = now()`

	snapshot := prof.Snapshot()
	_, err := r.db.Exec(ctx, query,
		prof.UserID(), snapshot.Allergies, snapshot.Diets, snapshot.DislikedIngredients, prof.OnboardingCompleted(),
	)
	if err != nil {
		r.logger.Error("Failed to upsert dietary profile",
			zap.String("user_id", prof.UserID().String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
