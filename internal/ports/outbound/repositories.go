// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthymeal/v2/internal/domain/modification"
	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/internal/domain/recipe"
)

// RecipeRepository defines the interface for recipe persistence.
// GetByID is scoped to the requesting user: a recipe that exists but
// belongs to someone else is reported as absent (nil, nil), so ownership
// is enforced here and not re-validated by callers.
type RecipeRepository interface {
	Create(ctx context.Context, rec *recipe.Recipe) error
	GetByID(ctx context.Context, userID, recipeID uuid.UUID) (*recipe.Recipe, error)
	Update(ctx context.Context, rec *recipe.Recipe) error
	Delete(ctx context.Context, userID, recipeID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error)
}

// ProfileRepository defines the interface for dietary profile persistence.
// GetByUserID returns (nil, nil) when the user has not completed
// onboarding; absence is a reportable condition, not an error.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.DietaryProfile, error)
	Upsert(ctx context.Context, p *profile.DietaryProfile) error
}

// AuditLogStore persists modification attempt records. Implementations
// must be safe for concurrent use; the pipeline calls Record from
// detached goroutines and never inspects the entries again.
type AuditLogStore interface {
	Record(ctx context.Context, entry modification.AuditLogEntry) error
}
