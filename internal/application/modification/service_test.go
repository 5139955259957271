package modification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/healthymeal/v2/internal/domain/modification"
	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/internal/domain/recipe"
	"github.com/healthymeal/v2/internal/ports/outbound"
	apperrors "github.com/healthymeal/v2/pkg/errors"
)

// MockRecipeRepository is a mock implementation of the recipe repository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, userID, recipeID uuid.UUID) (*recipe.Recipe, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*recipe.Recipe), args.Int(1), args.Error(2)
}

// MockProfileRepository is a mock implementation of the profile repository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.DietaryProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.DietaryProfile), args.Error(1)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, p *profile.DietaryProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockModelService is a mock implementation of the model service client
type MockModelService struct {
	mock.Mock
}

func (m *MockModelService) Complete(ctx context.Context, req outbound.ChatCompletionRequest) (*outbound.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.ChatCompletionResponse), args.Error(1)
}

// captureAuditStore collects audit entries on a channel so tests can
// wait for the detached write without sleeping.
type captureAuditStore struct {
	entries chan modification.AuditLogEntry
	err     error
}

func newCaptureAuditStore(err error) *captureAuditStore {
	return &captureAuditStore{entries: make(chan modification.AuditLogEntry, 4), err: err}
}

func (c *captureAuditStore) Record(ctx context.Context, entry modification.AuditLogEntry) error {
	c.entries <- entry
	return c.err
}

func (c *captureAuditStore) waitForEntry(t *testing.T) modification.AuditLogEntry {
	t.Helper()
	select {
	case entry := <-c.entries:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit log entry")
		return modification.AuditLogEntry{}
	}
}

func completionResponse(content string) *outbound.ChatCompletionResponse {
	return &outbound.ChatCompletionResponse{
		Choices: []outbound.ChatChoice{
			{Message: outbound.ChatMessage{Role: outbound.RoleAssistant, Content: content}},
		},
		Usage: outbound.TokenUsage{PromptTokens: 100, CompletionTokens: 200, TotalTokens: 300},
	}
}

type serviceFixture struct {
	service  *Service
	recipes  *MockRecipeRepository
	profiles *MockProfileRepository
	model    *MockModelService
	audit    *captureAuditStore
	userID   uuid.UUID
	recipeID uuid.UUID
}

func newServiceFixture(t *testing.T, auditErr error) *serviceFixture {
	t.Helper()
	recipes := &MockRecipeRepository{}
	profiles := &MockProfileRepository{}
	model := &MockModelService{}
	audit := newCaptureAuditStore(auditErr)

	service := NewService(recipes, profiles, model, audit, nil, DefaultConfig(), zaptest.NewLogger(t))

	return &serviceFixture{
		service:  service,
		recipes:  recipes,
		profiles: profiles,
		model:    model,
		audit:    audit,
		userID:   uuid.New(),
		recipeID: uuid.New(),
	}
}

func (f *serviceFixture) givenRecipe(t *testing.T) *recipe.Recipe {
	t.Helper()
	rec, err := recipe.NewRecipe(f.userID, "Pasta", "pasta, shrimp, butter", "boil, sauté, combine")
	require.NoError(t, err)
	f.recipes.On("GetByID", mock.Anything, f.userID, f.recipeID).Return(rec, nil)
	return rec
}

func (f *serviceFixture) givenProfile(allergies, diets, disliked []string) *profile.DietaryProfile {
	prof := profile.NewDietaryProfile(f.userID, allergies, diets, disliked)
	f.profiles.On("GetByUserID", mock.Anything, f.userID).Return(prof, nil)
	return prof
}

const shrimpFreePayload = `{
	"title": "Pasta (shrimp-free)",
	"ingredients": "pasta, mushrooms, butter",
	"instructions": "boil, sauté, combine",
	"changes_summary": [
		{"type": "removal", "from": "shrimp", "to": ""}
	]
}`

func TestModifyRecipeSuccess(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.givenRecipe(t)
	f.givenProfile([]string{"shellfish"}, nil, nil)
	f.model.On("Complete", mock.Anything, mock.AnythingOfType("outbound.ChatCompletionRequest")).
		Return(completionResponse(shrimpFreePayload), nil)

	result, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.NoError(t, err)

	assert.Equal(t, "Pasta (shrimp-free)", result.Title)
	assert.NotContains(t, result.Ingredients, "shrimp")
	assert.Equal(t, f.recipeID, result.OriginalRecipeID)
	assert.Equal(t, f.userID, result.UserID)
	require.Len(t, result.ChangesSummary, 1)
	assert.Equal(t, modification.ChangeTypeRemoval, result.ChangesSummary[0].Type)
	assert.Equal(t, "shrimp", result.ChangesSummary[0].From)

	entry := f.audit.waitForEntry(t)
	assert.True(t, entry.WasSuccessful)
	assert.Equal(t, f.recipeID, entry.OriginalRecipeID)
	assert.Equal(t, []string{"shellfish"}, entry.Preferences.Allergies)
	assert.Nil(t, entry.ModifiedRecipeID)
	assert.Empty(t, entry.ErrorMessage)
}

func TestModifyRecipeSendsStructuredOutputRequest(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.givenRecipe(t)
	f.givenProfile([]string{"shellfish"}, nil, nil)

	var gotReq outbound.ChatCompletionRequest
	f.model.On("Complete", mock.Anything, mock.AnythingOfType("outbound.ChatCompletionRequest")).
		Run(func(args mock.Arguments) {
			gotReq = args.Get(1).(outbound.ChatCompletionRequest)
		}).
		Return(completionResponse(shrimpFreePayload), nil)

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.NoError(t, err)

	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, outbound.RoleUser, gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "Allergies: shellfish")
}

func TestModifyRecipeRecipeNotFound(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.recipes.On("GetByID", mock.Anything, f.userID, f.recipeID).Return(nil, nil)
	f.givenProfile([]string{"shellfish"}, nil, nil)

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRecipeNotFound, apperrors.GetCode(err))
	f.model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestModifyRecipeProfileAbsent(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.givenRecipe(t)
	f.profiles.On("GetByUserID", mock.Anything, f.userID).Return(nil, nil)

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.Error(t, err)

	// The profile error must reference the profile, not the recipe.
	assert.Equal(t, apperrors.CodeProfileNotFound, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "onboarding")
	f.model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestModifyRecipeOwnershipDelegatedToRepository(t *testing.T) {
	// A recipe owned by another user is reported absent by the
	// repository; the service must surface plain not-found, not a
	// permission error.
	f := newServiceFixture(t, nil)
	f.recipes.On("GetByID", mock.Anything, f.userID, f.recipeID).Return(nil, nil)
	f.givenProfile(nil, []string{"vegan"}, nil)

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRecipeNotFound, apperrors.GetCode(err))
}

func TestModifyRecipeModelUnavailable(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.givenRecipe(t)
	f.givenProfile([]string{"shellfish"}, nil, nil)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewModelUnavailableError("upstream returned 503"))

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeModelUnavailable, apperrors.GetCode(err))

	entry := f.audit.waitForEntry(t)
	assert.False(t, entry.WasSuccessful)
	assert.Contains(t, entry.ErrorMessage, "503")
	assert.Equal(t, []string{"shellfish"}, entry.Preferences.Allergies)
}

func TestModifyRecipeMalformedModelOutput(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.givenRecipe(t)
	f.givenProfile([]string{"shellfish"}, nil, nil)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(completionResponse("not json"), nil)

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.Error(t, err)

	// A contract violation after a 2xx is distinct from unavailability.
	assert.Equal(t, apperrors.CodeAIResponseInvalid, apperrors.GetCode(err))

	entry := f.audit.waitForEntry(t)
	assert.False(t, entry.WasSuccessful)
	assert.NotEmpty(t, entry.ErrorMessage)
}

func TestModifyRecipeAuditFailureDoesNotAffectResult(t *testing.T) {
	t.Run("successful modification", func(t *testing.T) {
		f := newServiceFixture(t, assert.AnError)
		f.givenRecipe(t)
		f.givenProfile([]string{"shellfish"}, nil, nil)
		f.model.On("Complete", mock.Anything, mock.Anything).
			Return(completionResponse(shrimpFreePayload), nil)

		result, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
		require.NoError(t, err)
		assert.Equal(t, "Pasta (shrimp-free)", result.Title)
		f.audit.waitForEntry(t)
	})

	t.Run("failed modification", func(t *testing.T) {
		f := newServiceFixture(t, assert.AnError)
		f.givenRecipe(t)
		f.givenProfile([]string{"shellfish"}, nil, nil)
		f.model.On("Complete", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewModelUnavailableError("down"))

		_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeModelUnavailable, apperrors.GetCode(err))
		f.audit.waitForEntry(t)
	})
}

func TestModifyRecipeAuditSnapshotIsCopied(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.givenRecipe(t)
	prof := f.givenProfile([]string{"shellfish"}, []string{"vegetarian"}, []string{"cilantro"})
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(completionResponse(shrimpFreePayload), nil)

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.NoError(t, err)

	entry := f.audit.waitForEntry(t)

	// Mutating the snapshot must not touch the profile.
	entry.Preferences.Allergies[0] = "mutated"
	assert.Equal(t, []string{"shellfish"}, prof.Allergies())
}

func TestModifyRecipeAuditSurvivesRequestCancellation(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.givenRecipe(t)
	f.givenProfile([]string{"shellfish"}, nil, nil)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(completionResponse(shrimpFreePayload), nil)

	ctx, cancel := context.WithCancel(context.Background())

	_, err := f.service.ModifyRecipe(ctx, f.userID, f.recipeID)
	require.NoError(t, err)

	// Cancelling the request context after Modify returns must not stop
	// the detached audit write.
	cancel()
	entry := f.audit.waitForEntry(t)
	assert.True(t, entry.WasSuccessful)
}

func TestModifyRecipeRepositoryError(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.recipes.On("GetByID", mock.Anything, f.userID, f.recipeID).Return(nil, assert.AnError)
	f.givenProfile(nil, nil, nil)

	_, err := f.service.ModifyRecipe(context.Background(), f.userID, f.recipeID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}
