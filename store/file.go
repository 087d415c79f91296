package store

// FileRecord represents the metadata of an ingested document.
type FileRecord struct {
	ID        string
	Name      string
	Size      int
	CreatedTs int64 // unix milliseconds
	// TokenCount is an estimate (len/3.8); the embedding provider never
	// reports exact counts for ingested text.
	TokenCount int
}

// FindFileRecord specifies the conditions for listing file records.
type FindFileRecord struct {
	ID *string
}
