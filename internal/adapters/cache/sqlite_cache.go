package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/core"
)

// SQLiteCache stores prediction results in a SQLite database
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewSQLiteCache creates a new SQLite result cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_results (
			id TEXT PRIMARY KEY,
			source TEXT,
			model_version TEXT,
			row_count INTEGER,
			payload BLOB,
			created_at INTEGER,
			expires_at INTEGER
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_prediction_expires_at ON prediction_results(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a stored prediction result
func (c *SQLiteCache) Get(ctx context.Context, id string) (*core.StoredResult, error) {
	var (
		result               core.StoredResult
		createdAt, expiresAt int64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT id, source, model_version, row_count, payload, created_at, expires_at
		FROM prediction_results
		WHERE id = ? AND expires_at > ?
	`, id, time.Now().UnixNano()).Scan(
		&result.ID, &result.Source, &result.ModelVersion, &result.Rows,
		&result.Payload, &createdAt, &expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to query result cache: %w", err)
	}

	result.CreatedAt = time.Unix(0, createdAt)
	result.ExpiresAt = time.Unix(0, expiresAt)
	return &result, nil
}

// Set stores a prediction result
func (c *SQLiteCache) Set(ctx context.Context, result *core.StoredResult) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO prediction_results
			(id, source, model_version, row_count, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.ID, result.Source, result.ModelVersion, result.Rows, result.Payload,
		result.CreatedAt.UnixNano(), result.ExpiresAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// Delete removes a stored result
func (c *SQLiteCache) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM prediction_results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// Cleanup removes expired results
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM prediction_results
		WHERE expires_at <= ?
	`, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to clean up expired results: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired prediction results", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

func (c *SQLiteCache) startCleanupTask() {
	if c.cleanupFreq <= 0 {
		return
	}
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up result cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close SQLite database", zap.Error(err))
		}
	})
}
