package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthymeal/v2/internal/domain/modification"
	"github.com/healthymeal/v2/internal/ports/outbound"
)

// AuditLogRepository persists AI modification audit entries
type AuditLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *pgxpool.Pool, logger *zap.Logger) outbound.AuditLogStore {
	return &AuditLogRepository{
		db:     db,
		logger: logger.Named("audit-log-repo"),
	}
}

// Record inserts one audit entry. Entries are append-only; nothing in
// the pipeline ever updates or deletes them.
func (r *AuditLogRepository) Record(ctx context.Context, entry modification.AuditLogEntry) error {
	preferences, err := json.Marshal(entry.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preference snapshot: %w", err)
	}

	query := `
		INSERT INTO ai_modification_logs
			(id, user_id, original_recipe_id, modified_recipe_id, preferences,
			 model_used, processing_time_ms, was_successful, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.Exec(ctx, query,
		uuid.New(),
		entry.UserID,
		entry.OriginalRecipeID,
		entry.ModifiedRecipeID,
		preferences,
		entry.ModelUsed,
		entry.ProcessingTime.Milliseconds(),
		entry.WasSuccessful,
		nullableString(entry.ErrorMessage),
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record modification audit entry",
			zap.String("user_id", entry.UserID.String()),
			zap.String("original_recipe_id", entry.OriginalRecipeID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
