package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/core"
)

// MySQLCache stores prediction results in MySQL. The DSN must set
// parseTime=true so timestamps scan into time.Time.
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMySQLCache creates a new MySQL result cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_results (
			id CHAR(36) PRIMARY KEY,
			source VARCHAR(255),
			model_version VARCHAR(64),
			row_count INT,
			payload LONGBLOB,
			created_at DATETIME(6),
			expires_at DATETIME(6),
			INDEX idx_prediction_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a stored prediction result
func (c *MySQLCache) Get(ctx context.Context, id string) (*core.StoredResult, error) {
	var result core.StoredResult

	err := c.db.QueryRowContext(ctx, `
		SELECT id, source, model_version, row_count, payload, created_at, expires_at
		FROM prediction_results
		WHERE id = ? AND expires_at > ?
	`, id, time.Now()).Scan(
		&result.ID, &result.Source, &result.ModelVersion, &result.Rows,
		&result.Payload, &result.CreatedAt, &result.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to query result cache: %w", err)
	}

	return &result, nil
}

// Set stores a prediction result
func (c *MySQLCache) Set(ctx context.Context, result *core.StoredResult) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO prediction_results
			(id, source, model_version, row_count, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			source = VALUES(source),
			model_version = VALUES(model_version),
			row_count = VALUES(row_count),
			payload = VALUES(payload),
			created_at = VALUES(created_at),
			expires_at = VALUES(expires_at)
	`, result.ID, result.Source, result.ModelVersion, result.Rows, result.Payload,
		result.CreatedAt, result.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// Delete removes a stored result
func (c *MySQLCache) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM prediction_results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// Cleanup removes expired results
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM prediction_results
		WHERE expires_at <= ?
	`, time.Now())
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

func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close MySQL database", zap.Error(err))
		}
	})
}
