package modification

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/internal/domain/recipe"
)

func testRecipe(t *testing.T) *recipe.Recipe {
	t.Helper()
	rec, err := recipe.NewRecipe(uuid.New(), "Pasta", "pasta, shrimp, butter", "boil, sauté, combine")
	require.NoError(t, err)
	return rec
}

func TestBuildModificationPromptIsDeterministic(t *testing.T) {
	rec := testRecipe(t)
	prof := profile.NewDietaryProfile(uuid.New(),
		[]string{"shellfish"}, []string{"vegetarian"}, []string{"cilantro"})

	first := BuildModificationPrompt(rec, prof)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildModificationPrompt(rec, prof))
	}
}

func TestBuildModificationPromptIncludesRecipeAndPreferences(t *testing.T) {
	rec := testRecipe(t)
	prof := profile.NewDietaryProfile(uuid.New(),
		[]string{"shellfish", "peanuts"}, []string{"vegan"}, []string{"olives"})

	prompt := BuildModificationPrompt(rec, prof)

	assert.Contains(t, prompt, "Title: Pasta")
	assert.Contains(t, prompt, "Ingredients: pasta, shrimp, butter")
	assert.Contains(t, prompt, "Instructions: boil, sauté, combine")
	assert.Contains(t, prompt, "Allergies: shellfish, peanuts")
	assert.Contains(t, prompt, "Dietary preferences: vegan")
	assert.Contains(t, prompt, "Disliked ingredients: olives")
	assert.Contains(t, prompt, `"changes_summary"`)
	assert.Contains(t, prompt, "Return ONLY valid JSON")
	assert.NotContains(t, prompt, noPreferencesLine)
}

func TestBuildModificationPromptOmitsEmptyPreferenceSections(t *testing.T) {
	rec := testRecipe(t)
	prof := profile.NewDietaryProfile(uuid.New(), []string{"shellfish"}, nil, nil)

	prompt := BuildModificationPrompt(rec, prof)

	assert.Contains(t, prompt, "Allergies: shellfish")
	assert.NotContains(t, prompt, "Dietary preferences:")
	assert.NotContains(t, prompt, "Disliked ingredients:")
	assert.NotContains(t, prompt, noPreferencesLine)
}

func TestBuildModificationPromptWithNoPreferences(t *testing.T) {
	rec := testRecipe(t)
	prof := profile.NewDietaryProfile(uuid.New(), nil, nil, nil)

	prompt := BuildModificationPrompt(rec, prof)

	assert.Equal(t, 1, strings.Count(prompt, noPreferencesLine))
	assert.NotContains(t, prompt, "Allergies:")
	assert.NotContains(t, prompt, "Dietary preferences:")
	assert.NotContains(t, prompt, "Disliked ingredients:")
}
