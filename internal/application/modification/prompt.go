package modification

import (
	"strings"

	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/internal/domain/recipe"
)

// noPreferencesLine is rendered when the profile has no allergies, diets
// or disliked ingredients at all.
const noPreferencesLine = "No specific preferences"

// BuildModificationPrompt renders the original recipe and the user's
// dietary preferences into one instruction block for the model.
// The output is deterministic: identical inputs produce byte-identical
// prompts, so prompts are safe to diff and cache-key against.
func BuildModificationPrompt(rec *recipe.Recipe, prof *profile.DietaryProfile) string {
	var preferences []string

	if allergies := prof.Allergies(); len(allergies) > 0 {
		preferences = append(preferences, "Allergies: "+strings.Join(allergies, ", "))
	}
	if diets := prof.Diets(); len(diets) > 0 {
		preferences = append(preferences, "Dietary preferences: "+strings.Join(diets, ", "))
	}
	if disliked := prof.DislikedIngredients(); len(disliked) > 0 {
		preferences = append(preferences, "Disliked ingredients: "+strings.Join(disliked, ", "))
	}

	preferencesText := noPreferencesLine
	if len(preferences) > 0 {
		preferencesText = strings.Join(preferences, "\n")
	}

	var b strings.Builder
	b.WriteString("You are a helpful cooking assistant. Modify the following recipe to accommodate the user's dietary preferences and restrictions.\n\n")
	b.WriteString("Original Recipe:\n")
	b.WriteString("Title: ")
	b.WriteString(rec.Title())
	b.WriteString("\nIngredients: ")
	b.WriteString(rec.Ingredients())
	b.WriteString("\nInstructions: ")
	b.WriteString(rec.Instructions())
	b.WriteString("\n\nUser Preferences:\n")
	b.WriteString(preferencesText)
	b.WriteString("\n\n")
	b.WriteString(`Please modify the recipe to accommodate these preferences and return a JSON object with the following structure:
{
  "title": "Modified recipe title (indicate what was changed)",
  "ingredients": "Modified ingredients list",
  "instructions": "Modified cooking instructions",
  "changes_summary": [
    {"type": "substitution", "from": "original ingredient", "to": "replacement ingredient"},
    {"type": "removal", "from": "removed ingredient", "to": ""},
    {"type": "addition", "from": "", "to": "added ingredient"}
  ]
}

Important:
- Keep the recipe recognizable but adapt it fully to the user's needs
- If there are allergies, ensure all allergens are completely removed
- For dietary preferences, substitute ingredients accordingly
- Document all changes in the changes_summary array
- Return ONLY valid JSON, no additional text`)

	return b.String()
}
