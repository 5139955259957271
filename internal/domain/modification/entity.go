// Package modification contains the value objects produced by the AI
// recipe modification pipeline: the unsaved modified recipe, its change
// list, and the audit log entry recorded for every attempt.
package modification

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthymeal/v2/internal/domain/profile"
)

// ChangeType classifies a single alteration the model made to a recipe
type ChangeType string

const (
	ChangeTypeSubstitution ChangeType = "substitution"
	ChangeTypeAddition     ChangeType = "addition"
	ChangeTypeRemoval      ChangeType = "removal"
	ChangeTypeModification ChangeType = "modification"
)

// IsValid reports whether the change type is one of the known values
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeSubstitution, ChangeTypeAddition, ChangeTypeRemoval, ChangeTypeModification:
		return true
	}
	return false
}

// ChangeEntry describes one alteration. For removals To is empty; for
// additions From is empty. Order reflects the model's own ordering and
// carries no semantics beyond display order.
type ChangeEntry struct {
	Type ChangeType `json:"type"`
	From string     `json:"from"`
	To   string     `json:"to"`
}

// ModifiedRecipe is the unsaved result of one modification attempt.
// It deliberately has no identifier and no timestamps: persistence is a
// separate operation the caller performs afterward.
type ModifiedRecipe struct {
	UserID           uuid.UUID     `json:"user_id"`
	Title            string        `json:"title"`
	Ingredients      string        `json:"ingredients"`
	Instructions     string        `json:"instructions"`
	OriginalRecipeID uuid.UUID     `json:"original_recipe_id"`
	ChangesSummary   []ChangeEntry `json:"changes_summary"`
}

// AuditLogEntry records one modification attempt, success or failure.
// Written asynchronously and never read back by the pipeline.
type AuditLogEntry struct {
	UserID           uuid.UUID
	OriginalRecipeID uuid.UUID
	// ModifiedRecipeID stays nil until the caller persists the result and
	// reports it back through a separate flow.
	ModifiedRecipeID *uuid.UUID
	Preferences      profile.PreferenceSnapshot
	ModelUsed        string
	ProcessingTime   time.Duration
	WasSuccessful    bool
	ErrorMessage     string
	CreatedAt        time.Time
}
