// Package cache is a read-through findings cache backed by pgvector.
// Findings from completed runs are embedded and stored; new runs with a
// semantically similar query get them seeded back in, saving search
// round-trips. Every failure here degrades to a cache miss.
package cache

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/mikeboe/research-assistant/pkg/database"
	"github.com/mikeboe/research-assistant/pkg/research"
)

// minSimilarity is the cosine similarity floor below which a cached
// finding is not considered relevant to the new query.
const minSimilarity = 0.75

// Embedder abstracts embedding generation so tests can fake it.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Cache implements research.FindingsCache on Postgres with pgvector.
type Cache struct {
	db       *database.PostgresDB
	embedder Embedder
	table    string
	splitter textsplitter.TextSplitter
}

// isValidCacheTable validates the configured table name so it can be
// interpolated safely. Postgres identifiers are limited to 63 characters.
func isValidCacheTable(name string) bool {
	matched, _ := regexp.MatchString(`^[a-z_][a-zA-Z0-9_]{0,62}$`, name)
	return matched
}

func New(ctx context.Context, db *database.PostgresDB, embedder Embedder, table string) (*Cache, error) {
	if !isValidCacheTable(table) {
		return nil, fmt.Errorf("invalid cache table name %q: must contain only alphanumerics and underscores and start with a letter or underscore", table)
	}

	if err := db.EnsureVectorExtension(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure vector extension: %w", err)
	}
	if err := db.CreateCacheTable(ctx, table, embeddingDim); err != nil {
		return nil, err
	}

	return &Cache{
		db:       db,
		embedder: embedder,
		table:    table,
		// Snippets are embedded whole when they fit; long abstracts are
		// clipped to the first chunk to stay inside the embedding input
		// budget.
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(1000),
			textsplitter.WithChunkOverlap(0),
		),
	}, nil
}

// Add embeds and stores findings under the query that produced them.
func (c *Cache) Add(ctx context.Context, query string, findings []research.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (query, url, title, snippet, quality_score, quality_tier, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pgx.Identifier{c.table}.Sanitize())

	batch := &pgx.Batch{}
	for _, f := range findings {
		text := c.embeddingText(query, f)
		embedding, err := c.embedder.EmbedText(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed finding %s: %w", f.URL, err)
		}
		batch.Queue(insert, query, f.URL, f.Title, f.Snippet, f.QualityScore, f.QualityTier, pgvector.NewVector(embedding))
	}

	br := c.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for range findings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert cached finding: %w", err)
		}
	}
	return nil
}

// Similar returns up to limit cached findings whose embedded text is
// close to the query. Duplicate URLs keep only the best match.
func (c *Cache) Similar(ctx context.Context, query string, limit int) ([]research.Finding, error) {
	if limit <= 0 {
		limit = 3
	}

	embedding, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	sql := fmt.Sprintf(`
		SELECT url, title, snippet, quality_score, quality_tier, similarity FROM (
			SELECT DISTINCT ON (url) url, title, snippet, quality_score, quality_tier,
				1 - (embedding <=> $1) AS similarity
			FROM %s
			ORDER BY url, embedding <=> $1
		) best
		WHERE similarity >= $2
		ORDER BY similarity DESC
		LIMIT $3
	`, pgx.Identifier{c.table}.Sanitize())

	rows, err := c.db.Pool.Query(ctx, sql, pgvector.NewVector(embedding), minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity search: %w", err)
	}
	defer rows.Close()

	var findings []research.Finding
	for rows.Next() {
		var f research.Finding
		var similarity float64
		if err := rows.Scan(&f.URL, &f.Title, &f.Snippet, &f.QualityScore, &f.QualityTier, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return findings, nil
}

func (c *Cache) embeddingText(query string, f research.Finding) string {
	text := fmt.Sprintf("Query: %s\nTitle: %s\nContent: %s", query, f.Title, f.Snippet)
	chunks, err := c.splitter.SplitText(text)
	if err != nil || len(chunks) == 0 {
		return text
	}
	return chunks[0]
}
