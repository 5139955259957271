// Package profile contains the dietary profile domain model.
// A profile captures what a user cannot or will not eat; it is created
// during onboarding and consulted whenever a recipe is personalized.
package profile

import (
	"time"

	"github.com/google/uuid"
)

// DietaryProfile holds a user's stored dietary preferences.
// Absence of a profile is a distinct condition from an empty one: a user
// without a profile has not completed onboarding yet.
type DietaryProfile struct {
	userID              uuid.UUID
	allergies           []string
	diets               []string
	dislikedIngredients []string
	onboardingCompleted bool
	updatedAt           time.Time
}

// NewDietaryProfile creates a profile for a user. Preference slices may be
// empty; providing at least one preference marks onboarding as completed,
// mirroring the profile update rules of the web application.
func NewDietaryProfile(userID uuid.UUID, allergies, diets, dislikedIngredients []string) *DietaryProfile {
	p := &DietaryProfile{
		userID:              userID,
		allergies:           copyStrings(allergies),
		diets:               copyStrings(diets),
		dislikedIngredients: copyStrings(dislikedIngredients),
		updatedAt:           time.Now(),
	}
	p.onboardingCompleted = p.HasPreferences()
	return p
}

// Reconstitute rebuilds a profile from persisted state. Used by repositories only.
func Reconstitute(userID uuid.UUID, allergies, diets, dislikedIngredients []string, onboardingCompleted bool, updatedAt time.Time) *DietaryProfile {
	return &DietaryProfile{
		userID:              userID,
		allergies:           copyStrings(allergies),
		diets:               copyStrings(diets),
		dislikedIngredients: copyStrings(dislikedIngredients),
		onboardingCompleted: onboardingCompleted,
		updatedAt:           updatedAt,
	}
}

// UserID returns the owning user's identifier
func (p *DietaryProfile) UserID() uuid.UUID {
	return p.userID
}

// Allergies returns the user's allergy tags
func (p *DietaryProfile) Allergies() []string {
	return p.allergies
}

// Diets returns the user's diet tags
func (p *DietaryProfile) Diets() []string {
	return p.diets
}

// DislikedIngredients returns ingredients the user wants avoided
func (p *DietaryProfile) DislikedIngredients() []string {
	return p.dislikedIngredients
}

// OnboardingCompleted reports whether the user has finished onboarding
func (p *DietaryProfile) OnboardingCompleted() bool {
	return p.onboardingCompleted
}

// UpdatedAt returns the last update timestamp
func (p *DietaryProfile) UpdatedAt() time.Time {
	return p.updatedAt
}

// HasPreferences reports whether any preference set is non-empty
func (p *DietaryProfile) HasPreferences() bool {
	return len(p.allergies) > 0 || len(p.diets) > 0 || len(p.dislikedIngredients) > 0
}

// PreferenceSnapshot is a by-value copy of a profile's preference sets.
// Audit logs store snapshots so later profile edits do not retroactively
// alter historical entries.
type PreferenceSnapshot struct {
	Allergies           []string `json:"allergies"`
	Diets               []string `json:"diets"`
	DislikedIngredients []string `json:"disliked_ingredients"`
}

// Snapshot returns a deep copy of the profile's preference sets
func (p *DietaryProfile) Snapshot() PreferenceSnapshot {
	return PreferenceSnapshot{
		Allergies:           copyStrings(p.allergies),
		Diets:               copyStrings(p.diets),
		DislikedIngredients: copyStrings(p.dislikedIngredients),
	}
}

func copyStrings(src []string) []string {
	if len(src) == 0 {
		return []string{}
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
