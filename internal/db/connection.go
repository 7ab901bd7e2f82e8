package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds connection settings for the target list store
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Connection wraps the target store connection pool
type Connection struct {
	Pool *pgxpool.Pool
}

// DSN renders the keyword/value connection string for pgx.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL renders the connection string in the form golang-migrate expects.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// NewConnection opens the pool, registering the ltree codec used by term paths
func NewConnection(ctx context.Context, config Config) (*Connection, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		var ltreeOID uint32
		err := conn.QueryRow(ctx, "select oid from pg_type where typname = 'ltree'").Scan(&ltreeOID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Extension not installed yet; skip registration so connection still succeeds.
				return nil
			}
			return fmt.Errorf("failed to look up ltree type: %w", err)
		}

		ltreeType := &pgtype.Type{Name: "ltree", OID: ltreeOID, Codec: pgtype.LtreeCodec{}}
		conn.TypeMap().RegisterType(ltreeType)

		var ltreeArrayOID uint32
		err = conn.QueryRow(ctx, "select oid from pg_type where typname = '_ltree'").Scan(&ltreeArrayOID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to look up _ltree type: %w", err)
		}

		conn.TypeMap().RegisterType(&pgtype.Type{
			Name:  "_ltree",
			OID:   ltreeArrayOID,
			Codec: &pgtype.ArrayCodec{ElementType: ltreeType},
		})

		return nil
	}

	// A single sequential import needs few connections
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Minute * 30
	poolConfig.MaxConnIdleTime = time.Minute * 5
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{Pool: pool}, nil
}

// Close closes the database connection pool
func (c *Connection) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// DefaultConfig returns a default database configuration
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "admin",
		DBName:   "list_store",
		SSLMode:  "disable",
	}
}
