package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/akasha/server/service/chat"
)

type chatRequest struct {
	SessionID    string               `json:"sessionId"`
	Message      string               `json:"message"`
	DeepThinking bool                 `json:"deepThinking"`
	Cognitive    chat.CognitiveConfig `json:"cognitive"`
}

type logEvent struct {
	Step    string         `json:"step"`
	Details string         `json:"details"`
	Status  chat.LogStatus `json:"status"`
}

type chunkEvent struct {
	Content  string         `json:"content"`
	Metadata *chat.Metadata `json:"metadata,omitempty"`
}

// Chat runs one conversation turn and streams it back as server-sent events.
// Event types: "status" (phase transitions), "log" (activity feed), "chunk"
// (growing cumulative response text) and a final "done".
func (s *APIV1Service) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed chat request").SetInternal(err)
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	if req.Cognitive.Temperature <= 0 {
		req.Cognitive.Temperature = 0.7
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	// The orchestrator drives all callbacks from the handler goroutine, but
	// the write path stays guarded so callback ordering never depends on it.
	var mu sync.Mutex
	emit := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data)
		resp.Flush()
	}

	var finalText string
	onChunk := func(cumulative string, meta *chat.Metadata) {
		if cumulative != "" {
			finalText = cumulative
		}
		emit("chunk", chunkEvent{Content: cumulative, Metadata: meta})
	}
	addLog := func(step, details string, status chat.LogStatus) {
		emit("log", logEvent{Step: step, Details: details, Status: status})
	}
	setStatus := func(status chat.Status) {
		emit("status", map[string]string{"status": string(status)})
	}

	history := s.History.Messages(req.SessionID, 0)
	s.Orchestrator.ProcessUserMessageStream(
		c.Request().Context(),
		req.Message,
		history,
		req.Cognitive,
		onChunk,
		addLog,
		setStatus,
		req.DeepThinking,
	)

	s.History.Append(req.SessionID, chat.Message{Role: "user", Content: req.Message})
	if finalText != "" {
		s.History.Append(req.SessionID, chat.Message{Role: "assistant", Content: finalText})
	}

	emit("done", map[string]string{"sessionId": req.SessionID})
	return nil
}
