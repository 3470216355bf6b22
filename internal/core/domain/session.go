package domain

import "path/filepath"

// Prefixes used to derive per-session storage names.
const (
	IndexDirPrefix   = "vectors_"
	CollectionPrefix = "pdf_collection_"
)

// IndexHandle identifies a persistent vector collection.
// One handle exists per session and it is never shared.
type IndexHandle struct {
	// Path is the directory that holds the collection.
	Path string

	// Collection is the logical collection name.
	Collection string
}

// IsZero reports whether the handle is unset.
func (h IndexHandle) IsZero() bool {
	return h.Path == "" && h.Collection == ""
}

// NewIndexHandle derives the handle for a session under root.
func NewIndexHandle(root, sessionID string) IndexHandle {
	return IndexHandle{
		Path:       filepath.Join(root, IndexDirPrefix+sessionID),
		Collection: CollectionPrefix + sessionID,
	}
}

// SessionStatus is a read-only snapshot of a session for UI hosts.
type SessionStatus struct {
	ID           string
	Processed    bool
	DocumentName string
	ChunkCount   int
	TurnCount    int
}
