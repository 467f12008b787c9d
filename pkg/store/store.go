package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recipe3/ingest/internal/models"
)

type RecipeStoreConfig struct {
	ConnString string
	TableName  string
}

// RecipeStore persists finished recipes as one flat row per identity.
type RecipeStore struct {
	config RecipeStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config RecipeStoreConfig) (*RecipeStore, error) {
	if config.TableName == "" {
		config.TableName = "recipes"
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	rs := &RecipeStore{
		config: config,
		pool:   pool,
	}

	if err := rs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return rs, nil
}

func (rs *RecipeStore) initialize() error {
	ctx := context.Background()

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			uuid TEXT PRIMARY KEY,
			credit TEXT,
			name TEXT,
			ingredients TEXT,
			instructions TEXT,
			notes TEXT,
			summary TEXT,
			image TEXT
		)`, rs.config.TableName)

	_, err := rs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	return nil
}

// Put upserts the whole record. There is no concurrency check: identical
// identities overwrite each other wholesale, last writer wins.
func (rs *RecipeStore) Put(ctx context.Context, rec models.PersistedRecipe) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (uuid, credit, name, ingredients, instructions, notes, summary, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (uuid) DO UPDATE SET
			credit = EXCLUDED.credit,
			name = EXCLUDED.name,
			ingredients = EXCLUDED.ingredients,
			instructions = EXCLUDED.instructions,
			notes = EXCLUDED.notes,
			summary = EXCLUDED.summary,
			image = EXCLUDED.image`,
		rs.config.TableName)

	_, err := rs.pool.Exec(ctx, stmt,
		rec.UUID,
		rec.Credit,
		rec.Name,
		models.JoinList(rec.Ingredients),
		models.JoinList(rec.Instructions),
		rec.Notes,
		rec.Summary,
		rec.Image,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %v", err)
	}

	return nil
}

func (rs *RecipeStore) Close() {
	if rs.pool != nil {
		rs.pool.Close()
	}
}
