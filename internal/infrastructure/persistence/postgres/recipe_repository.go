package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthymeal/v2/internal/domain/recipe"
	"github.com/healthymeal/v2/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface
type RecipeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *pgxpool.Pool, logger *zap.Logger) outbound.RecipeRepository {
	return &RecipeRepository{
		db:     db,
		logger: logger.Named("recipe-repo"),
	}
}

// Create inserts a new recipe
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	query := `
		INSERT INTO recipes (id, user_id, title, ingredients, instructions, original_recipe_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		rec.ID(), rec.UserID(), rec.Title(), rec.Ingredients(), rec.Instructions(),
		rec.OriginalRecipeID(), rec.CreatedAt(), rec.UpdatedAt(),
	)
	if err != nil {
		r.logger.Error("Failed to create recipe",
			zap.String("recipe_id", rec.ID().String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// GetByID retrieves a recipe scoped to the requesting user. A recipe
// that exists but belongs to another user is reported absent, so the
// query itself enforces ownership.
func (r *RecipeRepository) GetByID(ctx context.Context, userID, recipeID uuid.UUID) (*recipe.Recipe, error) {
	query := `
		SELECT id, user_id, title, ingredients, instructions, original_recipe_id, created_at, updated_at
		FROM recipes
		WHERE id = $1 AND user_id = $2`

	row := r.db.QueryRow(ctx, query, recipeID, userID)

	rec, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to fetch recipe",
			zap.String("recipe_id", recipeID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return rec, nil
}

// Update persists recipe changes, scoped to the owning user
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	query := `
		UPDATE recipes
		SET title = $3, ingredients = $4, instructions = $5, original_recipe_id = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query,
		rec.ID(), rec.UserID(), rec.Title(), rec.Ingredients(), rec.Instructions(), rec.OriginalRecipeID(),
	)
	if err != nil {
		r.logger.Error("Failed to update recipe",
			zap.String("recipe_id", rec.ID().String()),
			zap.Error(err),
		)
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Delete removes a recipe owned by the given user
func (r *RecipeRepository) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, recipeID, userID)
	if err != nil {
		r.logger.Error("Failed to delete recipe",
			zap.String("recipe_id", recipeID.String()),
			zap.Error(err),
		)
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// ListByUser returns a page of the user's recipes and the total count
func (r *RecipeRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error) {
	query := `
		SELECT id, user_id, title, ingredients, instructions, original_recipe_id, created_at, updated_at
		FROM recipes
		WHERE user_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.db.Query(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recipes []*recipe.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM recipes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

func scanRecipe(row pgx.Row) (*recipe.Recipe, error) {
	var (
		id, userID           uuid.UUID
		title                string
		ingredients          string
		instructions         string
		originalRecipeID     *uuid.UUID
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &userID, &title, &ingredients, &instructions, &originalRecipeID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return recipe.Reconstitute(id, userID, title, ingredients, instructions, originalRecipeID, createdAt, updatedAt), nil
}
