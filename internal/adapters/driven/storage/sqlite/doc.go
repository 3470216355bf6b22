// Package sqlite implements the EmbeddingIndex port on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Every session owns one database file
// inside its index directory:
//
//	<index root>/vectors_<session id>/index.db
//
// The database holds a single collection row (pdf_collection_<session id>) and
// the chunks embedded for it. Queries are scored by brute-force cosine similarity,
// which is adequate for the few hundred chunks of a single uploaded document.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// A database whose schema version is newer than this binary knows about is
// treated as unreadable.
//
// # Thread Safety
//
// All operations are thread-safe. SQLite runs in WAL mode with a busy timeout.
package sqlite
