package recipe_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthymeal/v2/internal/domain/recipe"
	"github.com/healthymeal/v2/test/testutils"
)

func TestNewRecipe(t *testing.T) {
	userID := uuid.New()

	rec, err := recipe.NewRecipe(userID, "Pasta Carbonara", "pasta, eggs, bacon", "boil pasta, fry bacon, combine")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID())
	assert.Equal(t, userID, rec.UserID())
	assert.Equal(t, "Pasta Carbonara", rec.Title())
	assert.Nil(t, rec.OriginalRecipeID())
	assert.False(t, rec.CreatedAt().IsZero())
}

func TestNewRecipeValidation(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name         string
		title        string
		ingredients  string
		instructions string
		wantErr      error
	}{
		{
			name:         "empty title",
			title:        "  ",
			ingredients:  "pasta",
			instructions: "boil",
			wantErr:      recipe.ErrEmptyTitle,
		},
		{
			name:         "title too long",
			title:        strings.Repeat("x", 201),
			ingredients:  "pasta",
			instructions: "boil",
			wantErr:      recipe.ErrTitleTooLong,
		},
		{
			name:         "empty ingredients",
			title:        "Pasta",
			ingredients:  "",
			instructions: "boil",
			wantErr:      recipe.ErrEmptyIngredients,
		},
		{
			name:         "ingredients too long",
			title:        "Pasta",
			ingredients:  strings.Repeat("x", 10001),
			instructions: "boil",
			wantErr:      recipe.ErrIngredientsTooLong,
		},
		{
			name:         "empty instructions",
			title:        "Pasta",
			ingredients:  "pasta",
			instructions: "   ",
			wantErr:      recipe.ErrEmptyInstructions,
		},
		{
			name:         "instructions too long",
			title:        "Pasta",
			ingredients:  "pasta",
			instructions: strings.Repeat("x", 10001),
			wantErr:      recipe.ErrInstructionsTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recipe.NewRecipe(userID, tt.title, tt.ingredients, tt.instructions)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSetOriginalRecipe(t *testing.T) {
	factory := testutils.NewRecipeFactory(42)
	rec := factory.Recipe(uuid.New())

	originalID := uuid.New()
	rec.SetOriginalRecipe(originalID)

	require.NotNil(t, rec.OriginalRecipeID())
	assert.Equal(t, originalID, *rec.OriginalRecipeID())
}

func TestFactoryProducesValidRecipes(t *testing.T) {
	factory := testutils.NewRecipeFactory(7)
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		rec := factory.Recipe(userID)
		assert.NotEmpty(t, rec.Title())
		assert.NotEmpty(t, rec.Ingredients())
		assert.NotEmpty(t, rec.Instructions())
		assert.Equal(t, userID, rec.UserID())
	}
}
