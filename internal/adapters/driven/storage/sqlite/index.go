package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/retry"
)

// DatabaseFile is the database filename inside an index directory.
const DatabaseFile = "index.db"

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Ensure Index implements the interface.
var _ driven.EmbeddingIndex = (*Index)(nil)

// Index builds and opens per-session SQLite vector stores.
type Index struct {
	embedder  driven.EmbeddingService
	removal   retry.Policy
	removeAll func(path string) error
}

// Option configures an Index.
type Option func(*Index)

// WithRemovalPolicy overrides the retry policy used when deleting storage.
func WithRemovalPolicy(p retry.Policy) Option {
	return func(i *Index) {
		i.removal = p
	}
}

// NewIndex creates an index that embeds text with embedder.
func NewIndex(embedder driven.EmbeddingService, opts ...Option) *Index {
	idx := &Index{
		embedder:  embedder,
		removal:   retry.RemovalPolicy(),
		removeAll: os.RemoveAll,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build replaces whatever is stored at handle.Path with the given chunks.
func (i *Index) Build(ctx context.Context, chunks []domain.Chunk, handle domain.IndexHandle) error {
	if handle.Path == "" || handle.Collection == "" {
		return fmt.Errorf("%w: index handle is incomplete", domain.ErrInvalidInput)
	}
	defer logger.Timed("index build")()

	if err := i.removeStorage(ctx, handle.Path); err != nil {
		return err
	}

	vectors, err := i.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(handle.Path, 0700); err != nil {
		return fmt.Errorf("%w: creating index directory: %v", domain.ErrStorageIO, err)
	}

	db, err := openDatabase(filepath.Join(handle.Path, DatabaseFile))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("%w: running migrations: %v", domain.ErrStorageIO, err)
	}

	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	if err := writeCollection(ctx, db, handle.Collection, i.embedder.ModelName(), dims, chunks, vectors); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	logger.Debug("indexed %d chunks into %s", len(chunks), handle.Collection)
	return nil
}

// Connect opens an existing index read-only. It never migrates or rebuilds.
func (i *Index) Connect(ctx context.Context, handle domain.IndexHandle) (driven.IndexConnection, error) {
	if handle.Path == "" || handle.Collection == "" {
		return nil, fmt.Errorf("%w: index handle is incomplete", domain.ErrInvalidInput)
	}

	dbPath := filepath.Join(handle.Path, DatabaseFile)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no index at %s", domain.ErrNotFound, handle.Path)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	db, err := openReadOnly(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	if err := checkSchema(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	var dims int
	row := db.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", handle.Collection)
	if err := row.Scan(&dims); err != nil {
		db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %s", domain.ErrNotFound, handle.Collection)
		}
		return nil, fmt.Errorf("%w: reading collection: %v", domain.ErrRetrievalUnavailable, err)
	}

	if want := i.embedder.Dimensions(); want > 0 && dims > 0 && want != dims {
		db.Close()
		return nil, fmt.Errorf("%w: index has %d dimensions, embedder produces %d",
			domain.ErrRetrievalUnavailable, dims, want)
	}

	return &connection{
		db:       db,
		handle:   handle,
		embedder: i.embedder,
	}, nil
}

// Remove deletes the storage behind handle. A missing directory is not an error.
func (i *Index) Remove(ctx context.Context, handle domain.IndexHandle) error {
	if handle.Path == "" {
		return nil
	}
	return i.removeStorage(ctx, handle.Path)
}

// removeStorage deletes path with bounded retries.
func (i *Index) removeStorage(ctx context.Context, path string) error {
	res := i.removal.Do(ctx, func(attempt int) error {
		err := i.removeAll(path)
		if err != nil {
			logger.Warn("removing %s (attempt %d): %v", path, attempt, err)
		}
		return err
	})
	if !res.OK() {
		return fmt.Errorf("%w: removing stale index %s after %d attempts: %v",
			domain.ErrStorageIO, path, res.Attempts, res.Err)
	}
	return nil
}

// embedChunks embeds every chunk in one batch.
func (i *Index) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Content
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding chunks: %v", domain.ErrRetrievalUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrRetrievalUnavailable, len(vectors), len(chunks))
	}
	return vectors, nil
}

// openDatabase opens a database with WAL mode and foreign keys enabled.
func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}

// openReadOnly opens an existing database for queries only.
func openReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// writeCollection stores the collection row and its chunks in one transaction.
func writeCollection(
	ctx context.Context,
	db *sql.DB,
	collection, model string,
	dims int,
	chunks []domain.Chunk,
	vectors [][]float32,
) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO collections (name, model, dimensions) VALUES (?, ?, ?)",
		collection, model, dims); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, collection, document_id, content, position, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for n, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, collection, chunk.DocumentID, chunk.Content,
			chunk.Position, float32SliceToBytes(vectors[n]), string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// connection is an open index bound to one collection.
type connection struct {
	mu       sync.Mutex
	db       *sql.DB
	handle   domain.IndexHandle
	embedder driven.EmbeddingService
	closed   bool
}

var _ driven.IndexConnection = (*connection)(nil)

// Query returns the k chunks most similar to text.
func (c *connection) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	db, err := c.open()
	if err != nil {
		return nil, err
	}

	query, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrRetrievalUnavailable, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, document_id, content, position, embedding, metadata
		FROM chunks WHERE collection = ? ORDER BY position
	`, c.handle.Collection)
	if err != nil {
		return nil, fmt.Errorf("%w: reading chunks: %v", domain.ErrRetrievalUnavailable, err)
	}
	defer rows.Close()

	scored := []domain.ScoredChunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
		}
		scored = append(scored, domain.ScoredChunk{
			Chunk:      *chunk,
			Similarity: domain.CosineSimilarity(query, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading chunks: %v", domain.ErrRetrievalUnavailable, err)
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Similarity != scored[b].Similarity {
			return scored[a].Similarity > scored[b].Similarity
		}
		return scored[a].Position < scored[b].Position
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Count returns the number of chunks in the collection.
func (c *connection) Count(ctx context.Context) (int, error) {
	db, err := c.open()
	if err != nil {
		return 0, err
	}

	var n int
	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection = ?", c.handle.Collection)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting chunks: %v", domain.ErrRetrievalUnavailable, err)
	}
	return n, nil
}

// Handle returns the handle this connection was opened with.
func (c *connection) Handle() domain.IndexHandle {
	return c.handle
}

// Close releases the database. It is safe to call more than once.
func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

func (c *connection) open() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("%w: connection closed", domain.ErrRetrievalUnavailable)
	}
	return c.db, nil
}

// scanChunk scans a single chunk row.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embedding []byte
	var metadata sql.NullString

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.Position,
		&embedding, &metadata); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embedding)
	if metadata.Valid && metadata.String != "" && metadata.String != jsonNull {
		if err := json.Unmarshal([]byte(metadata.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
		}
	}
	return &chunk, nil
}
