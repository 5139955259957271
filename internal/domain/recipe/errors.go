package recipe

import "errors"

// Domain validation errors
var (
	ErrEmptyTitle          = errors.New("recipe title cannot be empty")
	ErrTitleTooLong        = errors.New("recipe title exceeds maximum length")
	ErrEmptyIngredients    = errors.New("recipe ingredients cannot be empty")
	ErrIngredientsTooLong  = errors.New("recipe ingredients exceed maximum length")
	ErrEmptyInstructions   = errors.New("recipe instructions cannot be empty")
	ErrInstructionsTooLong = errors.New("recipe instructions exceed maximum length")
)
