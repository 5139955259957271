package profile_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/test/testutils"
)

func TestNewDietaryProfileOnboardingRule(t *testing.T) {
	userID := uuid.New()

	withPrefs := profile.NewDietaryProfile(userID, []string{"shellfish"}, nil, nil)
	assert.True(t, withPrefs.OnboardingCompleted())
	assert.True(t, withPrefs.HasPreferences())

	empty := profile.NewDietaryProfile(userID, nil, nil, nil)
	assert.False(t, empty.OnboardingCompleted())
	assert.False(t, empty.HasPreferences())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	prof := profile.NewDietaryProfile(uuid.New(), []string{"shellfish"}, []string{"vegetarian"}, []string{"cilantro"})

	snapshot := prof.Snapshot()
	snapshot.Allergies[0] = "mutated"
	snapshot.Diets[0] = "mutated"
	snapshot.DislikedIngredients[0] = "mutated"

	assert.Equal(t, []string{"shellfish"}, prof.Allergies())
	assert.Equal(t, []string{"vegetarian"}, prof.Diets())
	assert.Equal(t, []string{"cilantro"}, prof.DislikedIngredients())
}

func TestSnapshotNeverNilSlices(t *testing.T) {
	prof := profile.NewDietaryProfile(uuid.New(), nil, nil, nil)

	snapshot := prof.Snapshot()
	assert.NotNil(t, snapshot.Allergies)
	assert.NotNil(t, snapshot.Diets)
	assert.NotNil(t, snapshot.DislikedIngredients)
}

func TestFactoryProfiles(t *testing.T) {
	factory := testutils.NewProfileFactory(42)
	userID := uuid.New()

	prof := factory.Profile(userID)
	require.True(t, prof.HasPreferences())
	assert.Equal(t, userID, prof.UserID())

	empty := factory.EmptyProfile(userID)
	assert.False(t, empty.HasPreferences())
}
