// Package db provides PostgreSQL persistence for news runs and their results.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/news-agent/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Run represents a news run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Topic       string     `json:"topic"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateRun creates a new run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, topic string) (string, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO news_runs (topic, status)
		 VALUES ($1, 'running')
		 RETURNING id`,
		topic,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id.String(), nil
}

// CompleteRun marks a run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID string, status string) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	_, err = db.pool.Exec(ctx,
		`UPDATE news_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveResult stores the summary, cited articles, and metrics for a run
func (db *DB) SaveResult(ctx context.Context, runID string, result *types.PipelineResult) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_results (run_id, summary_text, result)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id) DO UPDATE SET summary_text = $2, result = $3, created_at = NOW()`,
		id, result.SummaryText, resultJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	for ordinal, article := range result.CitedArticles {
		if err := db.saveCitedArticle(ctx, id, ordinal, article); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) saveCitedArticle(ctx context.Context, runID uuid.UUID, ordinal int, article types.Article) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_cited_articles (run_id, url, title, source_name, source_tier,
		                                 published_at, credibility_score, rank, ordinal)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (run_id, url) DO NOTHING`,
		runID, article.URL, article.Title, article.SourceName, string(article.SourceTier),
		article.PublishedAt, article.CredibilityScore, article.Rank, ordinal,
	)
	if err != nil {
		return fmt.Errorf("failed to save cited article: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, runID string) (*Run, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	var run Run
	err = db.pool.QueryRow(ctx,
		`SELECT id, topic, status, created_at, completed_at
		 FROM news_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.Topic, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// GetResult retrieves the stored result JSON for a run
func (db *DB) GetResult(ctx context.Context, runID string) (*types.PipelineResult, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	var resultJSON []byte
	err = db.pool.QueryRow(ctx,
		`SELECT result FROM run_results WHERE run_id = $1`,
		id,
	).Scan(&resultJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result types.PipelineResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to parse stored result: %w", err)
	}
	return &result, nil
}

// ListRuns retrieves recent runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, topic, status, created_at, completed_at
		 FROM news_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Topic, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
