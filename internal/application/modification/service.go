// Package modification implements the AI recipe modification use case:
// fetch recipe and dietary profile, build a prompt, call the model
// service, validate its structured answer, and assemble an unsaved
// modified recipe while auditing every attempt.
package modification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthymeal/v2/internal/domain/modification"
	"github.com/healthymeal/v2/internal/domain/profile"
	"github.com/healthymeal/v2/internal/domain/recipe"
	"github.com/healthymeal/v2/internal/ports/inbound"
	"github.com/healthymeal/v2/internal/ports/outbound"
	apperrors "github.com/healthymeal/v2/pkg/errors"
)

// Outcome labels used for metrics and logging
const (
	OutcomeSuccess    = "success"
	OutcomeNotFound   = "not_found"
	OutcomeModelError = "model_error"
	OutcomeParseError = "parse_error"
)

// Config holds the tunables for one modification pipeline
type Config struct {
	// Model is the model identifier sent to the completion API
	Model string
	// Temperature for the completion call
	Temperature float64
	// MaxTokens budget for the completion call
	MaxTokens int
	// AuditTimeout bounds the detached audit log write
	AuditTimeout time.Duration
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Model:        "google/gemini-2.0-flash-exp:free",
		Temperature:  0.7,
		MaxTokens:    2000,
		AuditTimeout: 10 * time.Second,
	}
}

// MetricsRecorder receives pipeline outcome observations. Implementations
// must be safe for concurrent use. A nil recorder disables metrics.
type MetricsRecorder interface {
	RecordModification(outcome string, modelDuration time.Duration)
}

// Service orchestrates the modification pipeline. It holds no mutable
// state and is safe for concurrent use; each ModifyRecipe call is an
// independent single-pass unit of work with no internal retries.
type Service struct {
	recipes  outbound.RecipeRepository
	profiles outbound.ProfileRepository
	model    outbound.ModelService
	auditLog outbound.AuditLogStore
	metrics  MetricsRecorder
	config   Config
	logger   *zap.Logger
}

// NewService creates the modification service
func NewService(
	recipes outbound.RecipeRepository,
	profiles outbound.ProfileRepository,
	model outbound.ModelService,
	auditLog outbound.AuditLogStore,
	metrics MetricsRecorder,
	config Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes:  recipes,
		profiles: profiles,
		model:    model,
		auditLog: auditLog,
		metrics:  metrics,
		config:   config,
		logger:   logger.Named("modification"),
	}
}

var _ inbound.ModificationService = (*Service)(nil)

// ModifyRecipe runs one modification attempt. See the inbound port for
// the caller-facing contract.
func (s *Service) ModifyRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*modification.ModifiedRecipe, error) {
	rec, prof, err := s.fetchInputs(ctx, userID, recipeID)
	if err != nil {
		s.observe(OutcomeNotFound, 0)
		return nil, err
	}

	prompt := BuildModificationPrompt(rec, prof)
	snapshot := prof.Snapshot()

	req := outbound.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []outbound.ChatMessage{
			{Role: outbound.RoleUser, Content: prompt},
		},
		Temperature:    s.config.Temperature,
		MaxTokens:      s.config.MaxTokens,
		ResponseFormat: &outbound.ResponseFormat{Type: "json_object"},
	}

	start := time.Now()
	resp, err := s.model.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		appErr := classifyModelError(err)
		s.logger.Warn("Model service call failed",
			zap.String("user_id", userID.String()),
			zap.String("recipe_id", recipeID.String()),
			zap.String("code", string(appErr.Code)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		s.recordAudit(ctx, auditEntry(userID, recipeID, snapshot, s.config.Model, elapsed, false, appErr.Error()))
		s.observe(OutcomeModelError, elapsed)
		return nil, appErr
	}

	parsed, err := ParseModification(resp.Content())
	if err != nil {
		// The service answered 2xx but broke the output contract. Log an
		// excerpt of the raw content so prompt or model regressions can
		// be diagnosed from the operational log alone.
		s.logger.Error("Model response failed validation",
			zap.String("user_id", userID.String()),
			zap.String("recipe_id", recipeID.String()),
			zap.String("raw_excerpt", excerpt(resp.Content(), 300)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		appErr := apperrors.Wrap(err, "model response validation failed")
		s.recordAudit(ctx, auditEntry(userID, recipeID, snapshot, s.config.Model, elapsed, false, appErr.Error()))
		s.observe(OutcomeParseError, elapsed)
		return nil, appErr
	}

	result := &modification.ModifiedRecipe{
		UserID:           userID,
		Title:            parsed.Title,
		Ingredients:      parsed.Ingredients,
		Instructions:     parsed.Instructions,
		OriginalRecipeID: recipeID,
		ChangesSummary:   parsed.ChangesSummary,
	}

	s.recordAudit(ctx, auditEntry(userID, recipeID, snapshot, s.config.Model, elapsed, true, ""))
	s.observe(OutcomeSuccess, elapsed)

	s.logger.Info("Recipe modification succeeded",
		zap.String("user_id", userID.String()),
		zap.String("recipe_id", recipeID.String()),
		zap.Int("changes", len(result.ChangesSummary)),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// fetchInputs loads the recipe and profile concurrently and waits for
// both before reporting the first failure, so a slow profile lookup
// cannot mask a recipe error or vice versa.
func (s *Service) fetchInputs(ctx context.Context, userID, recipeID uuid.UUID) (*recipe.Recipe, *profile.DietaryProfile, error) {
	type recipeResult struct {
		rec *recipe.Recipe
		err error
	}
	type profileResult struct {
		prof *profile.DietaryProfile
		err  error
	}

	recipeCh := make(chan recipeResult, 1)
	profileCh := make(chan profileResult, 1)

	go func() {
		rec, err := s.recipes.GetByID(ctx, userID, recipeID)
		recipeCh <- recipeResult{rec: rec, err: err}
	}()
	go func() {
		prof, err := s.profiles.GetByUserID(ctx, userID)
		profileCh <- profileResult{prof: prof, err: err}
	}()

	recRes := <-recipeCh
	profRes := <-profileCh

	if recRes.err != nil {
		return nil, nil, apperrors.NewDatabaseError("fetch recipe", recRes.err)
	}
	if profRes.err != nil {
		return nil, nil, apperrors.NewDatabaseError("fetch dietary profile", profRes.err)
	}
	if recRes.rec == nil {
		return nil, nil, apperrors.NewRecipeNotFoundError(recipeID.String())
	}
	if profRes.prof == nil {
		return nil, nil, apperrors.NewProfileNotFoundError(userID.String())
	}

	return recRes.rec, profRes.prof, nil
}

// recordAudit writes the audit entry from a detached goroutine. The
// write inherits the caller's values (trace metadata) but not its
// cancellation, and its failure never reaches the caller.
func (s *Service) recordAudit(ctx context.Context, entry modification.AuditLogEntry) {
	detached := context.WithoutCancel(ctx)
	go func() {
		auditCtx, cancel := context.WithTimeout(detached, s.config.AuditTimeout)
		defer cancel()

		if err := s.auditLog.Record(auditCtx, entry); err != nil {
			s.logger.Error("Failed to record modification audit entry",
				zap.String("user_id", entry.UserID.String()),
				zap.String("recipe_id", entry.OriginalRecipeID.String()),
				zap.Bool("was_successful", entry.WasSuccessful),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) observe(outcome string, modelDuration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordModification(outcome, modelDuration)
	}
}

func auditEntry(
	userID, recipeID uuid.UUID,
	snapshot profile.PreferenceSnapshot,
	model string,
	elapsed time.Duration,
	successful bool,
	errorMessage string,
) modification.AuditLogEntry {
	return modification.AuditLogEntry{
		UserID:           userID,
		OriginalRecipeID: recipeID,
		Preferences:      snapshot,
		ModelUsed:        model,
		ProcessingTime:   elapsed,
		WasSuccessful:    successful,
		ErrorMessage:     errorMessage,
		CreatedAt:        time.Now(),
	}
}

func classifyModelError(err error) *apperrors.AppError {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr
	}
	return apperrors.NewModelUnavailableError(err.Error()).WithCause(err)
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
