package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

// PostgresStorage implements the result sink using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreResult stores a terminal execution result in PostgreSQL.
func (p *PostgresStorage) StoreResult(ctx context.Context, result *types.ExecutionResult) error {
	query := `
		INSERT INTO execution_results (
			execution_id, strategy_id, pair, status, protected_execution,
			actual_profit_usd, gas_cost_usd, execution_time_sec, slippage_pct,
			error_message, started_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	var profit sql.NullFloat64
	if result.ActualProfitUSD != nil {
		profit = sql.NullFloat64{Float64: *result.ActualProfitUSD, Valid: true}
	}

	_, err := p.db.ExecContext(ctx, query,
		result.ExecutionID,
		result.StrategyID,
		result.Pair,
		string(result.Status),
		result.ProtectedExecutionUsed,
		profit,
		result.GasCostUSD,
		result.ExecutionTimeSec,
		result.SlippagePct,
		result.ErrorMessage,
		result.StartedAt,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert execution result: %w", err)
	}

	p.logger.Debug("execution-result-stored",
		zap.String("execution-id", result.ExecutionID),
		zap.String("status", string(result.Status)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
