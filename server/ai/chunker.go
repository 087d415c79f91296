package ai

const (
	// DefaultChunkSize is the maximum character count per chunk.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the character count shared by consecutive chunks.
	// The overlap guarantees a concept split across a chunk boundary still
	// appears whole in at least one chunk at retrieval time.
	DefaultChunkOverlap = 500
)

// Chunk splits text into overlapping fixed-size windows. Consecutive chunks
// overlap by exactly `overlap` characters; the final chunk may be shorter.
// Windows are measured in runes so multi-byte text never splits mid-character.
// These are raw character windows, not paragraph-aware: retrieval quality for
// personal archives was better with a dense fixed stride than with semantic
// splitting, and the heavy overlap already preserves boundary context.
func Chunk(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		// The default overlap can exceed a small custom size, so derive the
		// fallback from the size to keep the stride positive.
		overlap = size / 2
	}

	runes := []rune(text)
	stride := size - overlap
	var chunks []string
	for i := 0; i < len(runes); i += stride {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if i+size >= len(runes) {
			break
		}
	}
	return chunks
}
