package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/akasha/plugin/ai/timeout"
)

// StreamRequest describes a single streamed completion call.
type StreamRequest struct {
	APIKey       string
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	// Timeout bounds the whole call. The 30s inactivity window applies on top
	// of it and fires independently.
	Timeout time.Duration
}

// CompletionService drives streamed chat completions against an
// OpenAI-compatible API.
type CompletionService interface {
	// ChatStream streams a completion, invoking onDelta for every received
	// content delta in arrival order, and returns the accumulated full text.
	ChatStream(ctx context.Context, req StreamRequest, onDelta func(delta string)) (string, error)
}

type completionService struct {
	config *Config

	// newClient and inactivity are swappable in tests.
	newClient  func(key string) *openai.Client
	inactivity time.Duration
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(cfg *Config) CompletionService {
	return &completionService{
		config:     cfg,
		inactivity: timeout.InactivityTimeout,
		newClient: func(key string) *openai.Client {
			clientConfig := openai.DefaultConfig(key)
			if cfg.BaseURL != "" {
				clientConfig.BaseURL = cfg.BaseURL
			}
			return openai.NewClientWithConfig(clientConfig)
		},
	}
}

func (s *completionService) ChatStream(ctx context.Context, req StreamRequest, onDelta func(delta string)) (string, error) {
	overall := req.Timeout
	if overall <= 0 {
		overall = timeout.DraftTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, overall)
	defer cancel()

	// The inactivity watchdog cancels the stream with a cause distinct from
	// the overall deadline, so a stalled stream is reported as a stream
	// timeout rather than a slow call.
	inactivity := s.inactivity
	if inactivity <= 0 {
		inactivity = timeout.InactivityTimeout
	}
	ctx, cancelCause := context.WithCancelCause(ctx)
	defer cancelCause(nil)
	watchdog := time.AfterFunc(inactivity, func() {
		cancelCause(ErrStreamTimeout)
	})
	defer watchdog.Stop()

	stream, err := s.newClient(req.APIKey).CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		Stream:      true,
	})
	if err != nil {
		return "", s.classify(ctx, err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", s.classify(ctx, err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			watchdog.Reset(inactivity)
			full.WriteString(delta)
			onDelta(delta)
		}
		if reason := resp.Choices[0].FinishReason; reason != "" && reason != openai.FinishReasonNull {
			break
		}
	}

	return full.String(), nil
}

// classify maps a cancelled-context failure back to its cause so callers can
// tell the inactivity timeout apart from the overall deadline.
func (s *completionService) classify(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil && errors.Is(cause, ErrStreamTimeout) {
		return ErrStreamTimeout
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}
