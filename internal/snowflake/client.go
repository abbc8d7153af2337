package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/edupainel/leads-panel/internal/config"
)

// Client provides access to the Snowflake warehouse. It is constructed
// once at startup and injected into every service that queries the
// warehouse, so tests can substitute a sqlmock-backed *sql.DB instead.
type Client struct {
	config config.SnowflakeConfig
	db     *sql.DB
}

// NewClient creates a new Snowflake client
func NewClient(cfg config.SnowflakeConfig) (*Client, error) {
	// Build DSN (Data Source Name)
	// Format: user:password@account/database/schema?warehouse=xxx&role=yyy
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s",
		cfg.User,
		cfg.Password,
		cfg.Account,
		cfg.Database,
		cfg.Schema,
	)

	sep := "?"
	if cfg.Warehouse != "" {
		dsn += sep + "warehouse=" + cfg.Warehouse
		sep = "&"
	}
	if cfg.Role != "" {
		dsn += sep + "role=" + cfg.Role
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Client{
		config: cfg,
		db:     db,
	}, nil
}

// DB exposes the underlying pool for services that build their own queries
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
