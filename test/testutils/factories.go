// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/internal/domain/recipe"
)

// RecipeFactory creates test recipes with plausible content
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a recipe factory with a seeded faker so
// failures reproduce deterministically
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Recipe builds a valid recipe owned by the given user
func (f *RecipeFactory) Recipe(userID uuid.UUID) *recipe.Recipe {
	ingredients := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ingredients = append(ingredients, f.faker.Lunch())
	}

	instructions := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		instructions = append(instructions, fmt.Sprintf("%d. %s", i, f.faker.Sentence(8)))
	}

	rec, err := recipe.NewRecipe(
		userID,
		f.faker.Dinner(),
		strings.Join(ingredients, "\n"),
		strings.Join(instructions, "\n"),
	)
	if err != nil {
		panic(fmt.Sprintf("factory produced invalid recipe: %v", err))
	}
	return rec
}

// ProfileFactory creates test dietary profiles
type ProfileFactory struct {
	faker *gofakeit.Faker
}

// NewProfileFactory creates a profile factory with a seeded faker
func NewProfileFactory(seed int64) *ProfileFactory {
	return &ProfileFactory{
		faker: gofakeit.New(seed),
	}
}

// Profile builds a profile with at least one preference in each set
func (f *ProfileFactory) Profile(userID uuid.UUID) *profile.DietaryProfile {
	allergies := []string{f.faker.RandomString([]string{"shellfish", "peanuts", "gluten", "dairy", "eggs"})}
	diets := []string{f.faker.RandomString([]string{"vegetarian", "vegan", "keto", "paleo"})}
	disliked := []string{f.faker.Vegetable()}

	return profile.NewDietaryProfile(userID, allergies, diets, disliked)
}

// EmptyProfile builds a profile with no preferences, useful for testing
// the "No specific preferences" prompt path
func (f *ProfileFactory) EmptyProfile(userID uuid.UUID) *profile.DietaryProfile {
	return profile.NewDietaryProfile(userID, nil, nil, nil)
}
