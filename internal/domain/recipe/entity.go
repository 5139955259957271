// Package recipe contains the core domain logic for recipe management.
// This follows Domain-Driven Design principles with rich domain models.
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxTitleLength        = 200
	maxIngredientsLength  = 10000
	maxInstructionsLength = 10000
)

// Recipe represents the core recipe entity in our domain.
// Title, ingredients and instructions are free text, matching what users
// paste in; structure is not enforced beyond length caps.
type Recipe struct {
	id               uuid.UUID
	userID           uuid.UUID
	title            string
	ingredients      string
	instructions     string
	originalRecipeID *uuid.UUID
	createdAt        time.Time
	updatedAt        time.Time
}

// NewRecipe creates a new Recipe with validation
func NewRecipe(userID uuid.UUID, title, ingredients, instructions string) (*Recipe, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateIngredients(ingredients); err != nil {
		return nil, err
	}
	if err := validateInstructions(instructions); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Recipe{
		id:           uuid.New(),
		userID:       userID,
		title:        title,
		ingredients:  ingredients,
		instructions: instructions,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstitute rebuilds a Recipe from persisted state without validation.
// Used by repositories only.
func Reconstitute(
	id, userID uuid.UUID,
	title, ingredients, instructions string,
	originalRecipeID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Recipe {
	return &Recipe{
		id:               id,
		userID:           userID,
		title:            title,
		ingredients:      ingredients,
		instructions:     instructions,
		originalRecipeID: originalRecipeID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ID returns the recipe's unique identifier
func (r *Recipe) ID() uuid.UUID {
	return r.id
}

// UserID returns the owning user's identifier
func (r *Recipe) UserID() uuid.UUID {
	return r.userID
}

// Title returns the recipe's title
func (r *Recipe) Title() string {
	return r.title
}

// Ingredients returns the recipe's ingredients as free text
func (r *Recipe) Ingredients() string {
	return r.ingredients
}

// Instructions returns the recipe's instructions as free text
func (r *Recipe) Instructions() string {
	return r.instructions
}

// OriginalRecipeID returns the recipe this one was derived from, if any
func (r *Recipe) OriginalRecipeID() *uuid.UUID {
	return r.originalRecipeID
}

// CreatedAt returns the creation timestamp
func (r *Recipe) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns the last update timestamp
func (r *Recipe) UpdatedAt() time.Time {
	return r.updatedAt
}

// SetOriginalRecipe links this recipe to the recipe it was derived from
func (r *Recipe) SetOriginalRecipe(originalID uuid.UUID) {
	r.originalRecipeID = &originalID
	r.updatedAt = time.Now()
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEmptyTitle
	}
	if len(trimmed) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func validateIngredients(ingredients string) error {
	if strings.TrimSpace(ingredients) == "" {
		return ErrEmptyIngredients
	}
	if len(ingredients) > maxIngredientsLength {
		return ErrIngredientsTooLong
	}
	return nil
}

func validateInstructions(instructions string) error {
	if strings.TrimSpace(instructions) == "" {
		return ErrEmptyInstructions
	}
	if len(instructions) > maxInstructionsLength {
		return ErrInstructionsTooLong
	}
	return nil
}
