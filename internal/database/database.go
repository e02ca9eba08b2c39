package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/palaver-chat/palaver/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// NewDB opens a connection to SurrealDB using the configured endpoint and
// selects the configured namespace and database.
func NewDB(ctx context.Context, cfg config.Provider) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.GetDBUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	if cfg.GetDBUser() != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{
			Username: cfg.GetDBUser(),
			Password: cfg.GetDBPass(),
		}); err != nil {
			return nil, fmt.Errorf("failed to sign in to surrealdb: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.GetDBNs(), cfg.GetDBDb()); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	return db, nil
}

// Query executes a raw SurrealQL query with parameters and returns multiple
// results unmarshalled into type T.
func Query[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) ([]T, error) {
	queryResults, err := surrealdb.Query[[]T](ctx, db, query, params)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if len(*queryResults) == 0 {
		return nil, nil
	}
	return (*queryResults)[0].Result, nil
}

// QueryOne executes a query and returns a single result. If no results are
// found it returns nil, nil.
func QueryOne[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) (*T, error) {
	// SELECT queries are capped at one row; mutation statements don't
	// support LIMIT.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") && !hasLimitClause(query) {
		query += " LIMIT 1"
	}

	results, err := Query[T](ctx, db, query, params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Execute runs a query whose rows the caller does not need.
func Execute(ctx context.Context, db *surrealdb.DB, query string, params map[string]any) error {
	if _, err := surrealdb.Query[any](ctx, db, query, params); err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	return nil
}

func hasLimitClause(query string) bool {
	query = " " + strings.ToUpper(query) + " "
	return strings.Contains(query, " LIMIT ")
}
