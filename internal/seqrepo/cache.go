package seqrepo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// CachingResolver wraps a Resolver with a DuckDB-backed cache of resolved
// aliases and fetched subsequences. Bulk pipelines hit the same reference
// contexts repeatedly; caching keeps them off the network.
type CachingResolver struct {
	next Resolver
	db   *sql.DB
}

// OpenCache opens or creates a DuckDB cache at path and wraps next with it.
// An empty path selects an in-memory database.
func OpenCache(path string, next Resolver) (*CachingResolver, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	c := &CachingResolver{next: next, db: db}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return c, nil
}

// Close closes the cache database.
func (c *CachingResolver) Close() error {
	return c.db.Close()
}

func (c *CachingResolver) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS aliases (
			query VARCHAR,
			namespace VARCHAR,
			aliases VARCHAR,
			PRIMARY KEY (query, namespace)
		)`,
		`CREATE TABLE IF NOT EXISTS sequences (
			accession VARCHAR,
			start BIGINT,
			stop BIGINT,
			seq VARCHAR,
			PRIMARY KEY (accession, start, stop)
		)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// DeriveRefgetAccession caches refget derivations under the "refget"
// namespace key.
func (c *CachingResolver) DeriveRefgetAccession(ctx context.Context, prefixedAccession string) (string, error) {
	if cached, ok := c.lookupAliases(ctx, prefixedAccession, "refget"); ok {
		return cached[0], nil
	}
	acc, err := c.next.DeriveRefgetAccession(ctx, prefixedAccession)
	if err != nil {
		return "", err
	}
	c.storeAliases(ctx, prefixedAccession, "refget", []string{acc})
	return acc, nil
}

// TranslateIdentifier caches alias lookups per namespace.
func (c *CachingResolver) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
	if cached, ok := c.lookupAliases(ctx, id, namespace); ok {
		return cached, nil
	}
	aliases, err := c.next.TranslateIdentifier(ctx, id, namespace)
	if err != nil {
		return nil, err
	}
	c.storeAliases(ctx, id, namespace, aliases)
	return aliases, nil
}

// FetchSubsequence caches exact-range fetches.
func (c *CachingResolver) FetchSubsequence(ctx context.Context, accessionOrID string, start, end int64) (string, error) {
	var seq string
	err := c.db.QueryRowContext(ctx,
		`SELECT seq FROM sequences WHERE accession = ? AND start = ? AND stop = ?`,
		accessionOrID, start, end).Scan(&seq)
	if err == nil {
		return seq, nil
	}
	seq, err = c.next.FetchSubsequence(ctx, accessionOrID, start, end)
	if err != nil {
		return "", err
	}
	c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sequences (accession, start, stop, seq) VALUES (?, ?, ?, ?)`,
		accessionOrID, start, end, seq)
	return seq, nil
}

func (c *CachingResolver) lookupAliases(ctx context.Context, query, namespace string) ([]string, bool) {
	var joined string
	err := c.db.QueryRowContext(ctx,
		`SELECT aliases FROM aliases WHERE query = ? AND namespace = ?`,
		query, namespace).Scan(&joined)
	if err != nil || joined == "" {
		return nil, false
	}
	return strings.Split(joined, "\x1f"), true
}

func (c *CachingResolver) storeAliases(ctx context.Context, query, namespace string, aliases []string) {
	c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO aliases (query, namespace, aliases) VALUES (?, ?, ?)`,
		query, namespace, strings.Join(aliases, "\x1f"))
}
