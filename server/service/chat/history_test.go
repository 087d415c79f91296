package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionHistorySlidingWindow(t *testing.T) {
	h := NewSessionHistory(3)
	defer h.Close()

	for i := 0; i < 5; i++ {
		h.Append("s1", Message{Role: "user", Content: fmt.Sprintf("m%d", i)})
	}

	messages := h.Messages("s1", 0)
	require.Len(t, messages, 3)
	require.Equal(t, "m2", messages[0].Content)
	require.Equal(t, "m4", messages[2].Content)
}

func TestSessionHistoryLimit(t *testing.T) {
	h := NewSessionHistory(10)
	defer h.Close()

	for i := 0; i < 6; i++ {
		h.Append("s1", Message{Role: "user", Content: fmt.Sprintf("m%d", i)})
	}

	messages := h.Messages("s1", 2)
	require.Len(t, messages, 2)
	require.Equal(t, "m4", messages[0].Content)
	require.Equal(t, "m5", messages[1].Content)
}

func TestSessionHistoryIsolatesSessions(t *testing.T) {
	h := NewSessionHistory(10)
	defer h.Close()

	h.Append("s1", Message{Role: "user", Content: "from s1"})
	h.Append("s2", Message{Role: "user", Content: "from s2"})

	require.Len(t, h.Messages("s1", 0), 1)
	require.Len(t, h.Messages("s2", 0), 1)
	require.Equal(t, 2, h.SessionCount())

	h.ClearSession("s1")
	require.Empty(t, h.Messages("s1", 0))
	require.Len(t, h.Messages("s2", 0), 1)
}

func TestSessionHistoryReturnsCopies(t *testing.T) {
	h := NewSessionHistory(10)
	defer h.Close()

	h.Append("s1", Message{Role: "user", Content: "original"})
	messages := h.Messages("s1", 0)
	messages[0].Content = "mutated"

	require.Equal(t, "original", h.Messages("s1", 0)[0].Content)
}
