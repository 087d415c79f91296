package store

// MemoryKind classifies how a memory record entered the archive.
type MemoryKind string

const (
	// MemoryKindUserInput is a verbatim user turn recorded after a conversation.
	MemoryKindUserInput MemoryKind = "user_input"
	// MemoryKindAgentReflection is a generated answer recorded after a conversation.
	MemoryKindAgentReflection MemoryKind = "agent_reflection"
	// MemoryKindFact is a standalone fact stored by the host application.
	MemoryKindFact MemoryKind = "fact"
	// MemoryKindDocument is a chunk of an ingested document. Document records
	// always carry the FileID of the owning file record and are deleted with it.
	MemoryKindDocument MemoryKind = "document"
)

// MemoryRecord represents a single embedded fragment in the archive.
type MemoryRecord struct {
	ID        string
	Content   string
	Embedding []float32
	CreatedTs int64 // unix milliseconds
	Kind      MemoryKind
	// Source is an optional human-readable origin label (filename or "Archive").
	Source string
	// FileID is a weak reference to the owning FileRecord. It never owns the
	// file; it only exists so document chunks can be cascade-deleted.
	FileID string
}

// FindMemoryRecord specifies the conditions for listing memory records.
type FindMemoryRecord struct {
	ID     *string
	FileID *string
	Kind   *MemoryKind
}
