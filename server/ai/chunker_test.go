package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestChunkEmpty(t *testing.T) {
	require.Nil(t, Chunk("", DefaultChunkSize, DefaultChunkOverlap))
}

func TestChunkShorterThanSize(t *testing.T) {
	chunks := Chunk("short text", DefaultChunkSize, DefaultChunkOverlap)
	require.Equal(t, []string{"short text"}, chunks)
}

func TestChunkExactWindows(t *testing.T) {
	text := strings.Repeat("x", 3000)
	chunks := Chunk(text, 1000, 500)

	// Stride 500: windows start at 0, 500, 1000, 1500, 2000.
	require.Len(t, chunks, 5)
	for i, c := range chunks[:len(chunks)-1] {
		require.Len(t, c, 1000, "chunk %d", i)
	}
	require.Len(t, chunks[len(chunks)-1], 1000)
}

func TestChunkOverlapSharedBetweenNeighbors(t *testing.T) {
	var b strings.Builder
	for i := 0; b.Len() < 2500; i++ {
		b.WriteString("abcdefghij")
	}
	text := b.String()[:2500]
	chunks := Chunk(text, 1000, 500)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-500:]
		require.Equal(t, tail, chunks[i][:500], "chunks %d and %d should share 500 characters", i-1, i)
	}
}

func TestChunkCoversWholeText(t *testing.T) {
	text := strings.Repeat("0123456789", 137) // 1370 chars, not stride-aligned
	chunks := Chunk(text, 1000, 500)

	require.Equal(t, text[:1000], chunks[0])
	last := chunks[len(chunks)-1]
	require.True(t, strings.HasSuffix(text, last))

	// Every character position is inside at least one chunk.
	covered := 0
	for i, c := range chunks {
		start := i * 500
		require.Equal(t, text[start:start+len(c)], c)
		if start+len(c) > covered {
			covered = start + len(c)
		}
	}
	require.Equal(t, len(text), covered)
}

func TestChunkInvalidParamsFallBackToDefaults(t *testing.T) {
	text := strings.Repeat("x", 1500)

	require.Equal(t, Chunk(text, DefaultChunkSize, DefaultChunkOverlap), Chunk(text, 0, -1))
	require.Equal(t, Chunk(text, DefaultChunkSize, DefaultChunkOverlap), Chunk(text, 1000, 1000))
}

func TestChunkOversizedOverlapWithSmallSize(t *testing.T) {
	text := strings.Repeat("x", 1000)
	chunks := Chunk(text, 300, 300)

	// overlap >= size falls back to size/2, so the stride stays positive.
	require.NotEmpty(t, chunks)
	require.Len(t, chunks[0], 300)
	for i, c := range chunks {
		require.Equal(t, text[i*150:i*150+len(c)], c)
	}
	last := chunks[len(chunks)-1]
	require.Equal(t, len(text), (len(chunks)-1)*150+len(last))
}

func TestChunkKeepsMultiByteRunesIntact(t *testing.T) {
	text := strings.Repeat("你好世界", 300) // 1200 runes, 3600 bytes
	chunks := Chunk(text, 1000, 500)

	require.Len(t, chunks, 2)
	for i, c := range chunks {
		require.True(t, utf8.ValidString(c), "chunk %d", i)
	}
	require.Equal(t, 1000, utf8.RuneCountInString(chunks[0]))

	// Windows advance by runes, not bytes.
	runes := []rune(text)
	require.Equal(t, string(runes[:1000]), chunks[0])
	require.Equal(t, string(runes[500:]), chunks[1])
}
