// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthymeal/v2/internal/domain/modification"
)

// ModificationService defines the AI recipe modification use case.
// This is the primary port HTTP handlers drive.
type ModificationService interface {
	// ModifyRecipe fetches the recipe and the user's dietary profile,
	// asks the model service for a personalized variant, and returns an
	// unsaved ModifiedRecipe. Failures surface as pkg/errors AppErrors
	// that callers map to transport status codes.
	ModifyRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*modification.ModifiedRecipe, error)
}
