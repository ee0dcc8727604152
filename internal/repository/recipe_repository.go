package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

type RecipeRepository struct {
	pool *pgxpool.Pool
}

func NewRecipeRepository(pool *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{pool: pool}
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	const query = `
		INSERT INTO recipes (
			id, user_id, name, ingredients, instructions, photo_key, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		RETURNING created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Name,
		recipe.Ingredients,
		recipe.Instructions,
		recipe.PhotoKey,
	).Scan(&recipe.CreatedAt, &recipe.UpdatedAt)
}

func (r *RecipeRepository) GetForOwner(ctx context.Context, id, userID string) (models.Recipe, error) {
	const query = `
		SELECT id, user_id, name, ingredients, instructions, photo_key, created_at, updated_at
		FROM recipes WHERE id = $1 AND user_id = $2
	`

	row := r.pool.QueryRow(ctx, query, id, userID)
	var recipe models.Recipe
	if err := row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Name,
		&recipe.Ingredients,
		&recipe.Instructions,
		&recipe.PhotoKey,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Recipe{}, ErrRecipeNotFound
		}
		return models.Recipe{}, err
	}
	return recipe, nil
}

func (r *RecipeRepository) ListByOwner(ctx context.Context, userID string) ([]models.Recipe, error) {
	const query = `
		SELECT id, user_id, name, ingredients, instructions, photo_key, created_at, updated_at
		FROM recipes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		var recipe models.Recipe
		if err := rows.Scan(
			&recipe.ID,
			&recipe.UserID,
			&recipe.Name,
			&recipe.Ingredients,
			&recipe.Instructions,
			&recipe.PhotoKey,
			&recipe.CreatedAt,
			&recipe.UpdatedAt,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (r *RecipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	const query = `
		UPDATE recipes
		SET name = $3,
		    ingredients = $4,
		    instructions = $5,
		    photo_key = $6,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Name,
		recipe.Ingredients,
		recipe.Instructions,
		recipe.PhotoKey,
	).Scan(&recipe.CreatedAt, &recipe.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecipeNotFound
	}
	return err
}

func (r *RecipeRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM recipes WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}
