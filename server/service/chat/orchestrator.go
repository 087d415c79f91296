package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	pluginai "github.com/hrygo/akasha/plugin/ai"
	"github.com/hrygo/akasha/plugin/ai/timeout"
	serverai "github.com/hrygo/akasha/server/ai"
	"github.com/hrygo/akasha/store"
)

// Status mirrors the presentation states the host application drives from
// phase boundaries.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusThinking   Status = "thinking"
	StatusReflecting Status = "reflecting"
	StatusEvolving   Status = "evolving"
	StatusSpeaking   Status = "speaking"
	StatusIndexing   Status = "indexing"
)

// LogStatus classifies entries on the host-supplied log sink.
type LogStatus string

const (
	LogInfo    LogStatus = "info"
	LogSuccess LogStatus = "success"
	LogWarning LogStatus = "warning"
	LogError   LogStatus = "error"
)

// LogFunc is the host-supplied append-only log sink.
type LogFunc func(step, details string, status LogStatus)

// StatusFunc is the host-supplied status sink, called synchronously at phase
// boundaries.
type StatusFunc func(status Status)

// DebateStage identifies the current phase of the debate protocol.
type DebateStage string

const (
	StageDrafting   DebateStage = "drafting"
	StageCritiquing DebateStage = "critiquing"
	StageCompleted  DebateStage = "completed"
)

// DebateMeta carries the intermediate artifacts of the debate protocol.
type DebateMeta struct {
	Stage    DebateStage `json:"stage"`
	Draft    string      `json:"draft"`
	Critique string      `json:"critique,omitempty"`
}

// Metadata annotates streamed chunks.
type Metadata struct {
	Model          string      `json:"model,omitempty"`
	Provider       string      `json:"provider,omitempty"`
	IsDeepThinking bool        `json:"isDeepThinking"`
	Debate         *DebateMeta `json:"debate,omitempty"`
}

// ChunkFunc is the host-supplied streaming sink. It always receives the
// growing cumulative text of the user-visible message; intermediate debate
// phases pass an empty string with stage metadata instead.
type ChunkFunc func(cumulative string, meta *Metadata)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CognitiveConfig is the caller-supplied per-request tuning snapshot.
type CognitiveConfig struct {
	Temperature  float32 `json:"temperature"`
	EnableDebate bool    `json:"enableDebate"`
	// APIKey optionally overrides the default key pool for this request.
	APIKey string `json:"apiKey,omitempty"`
}

// Protocol names the generation protocol resolved for one turn.
type Protocol int

const (
	ProtocolSimple Protocol = iota
	ProtocolDebate
)

// resolveProtocol collapses the two independent flags into one explicit
// protocol, once per turn. Debate requires both the config switch and the
// per-turn deep-thinking request.
func resolveProtocol(cfg CognitiveConfig, deepThinking bool) Protocol {
	if cfg.EnableDebate && deepThinking {
		return ProtocolDebate
	}
	return ProtocolSimple
}

// historyWindow is the number of short-term turns carried into the prompt.
const historyWindow = 5

// Orchestrator drives one generation turn: recall, protocol execution with
// key fallback, and detached memory writes.
//
// Phases of a turn run strictly sequentially; concurrency exists only across
// turns (the caller must not start a new turn until status returns to idle)
// and between the critical path and the fire-and-forget memory writes.
type Orchestrator struct {
	config      *pluginai.Config
	completions pluginai.CompletionService
	recaller    *serverai.Recaller
	writer      *serverai.Writer
	provider    string
}

// NewOrchestrator creates a new generation Orchestrator.
func NewOrchestrator(cfg *pluginai.Config, completions pluginai.CompletionService, recaller *serverai.Recaller, writer *serverai.Writer) *Orchestrator {
	provider := "unknown"
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		provider = u.Host
	}
	return &Orchestrator{
		config:      cfg,
		completions: completions,
		recaller:    recaller,
		writer:      writer,
		provider:    provider,
	}
}

// ProcessUserMessageStream runs one conversation turn. It always resolves:
// terminal failures surface as a final chat message through onChunk and an
// idle status, never as a returned error that would leave the UI hanging.
func (o *Orchestrator) ProcessUserMessageStream(
	ctx context.Context,
	userText string,
	history []Message,
	cfg CognitiveConfig,
	onChunk ChunkFunc,
	addLog LogFunc,
	setStatus StatusFunc,
	enableDeepThinking bool,
) {
	keys := o.config.KeyPool(cfg.APIKey)
	if len(keys) == 0 {
		addLog("SECURITY", "No API keys available.", LogError)
		onChunk("The link requires an API key. Please configure one in Settings.", nil)
		setStatus(StatusIdle)
		return
	}

	addLog("AKASHA", "Searching local archives...", LogInfo)
	memories := o.recaller.Recall(ctx, userText, 0)
	if len(memories) > 0 {
		addLog("AKASHA", fmt.Sprintf("Retrieved %d knowledge fragments. Integrating...", len(memories)), LogSuccess)
	} else {
		addLog("AKASHA", "No direct matches found in archive.", LogWarning)
	}

	contextBlock := buildContextBlock(memories)
	systemPrompt := buildSystemPrompt(contextBlock)
	shortTerm := formatHistory(history, historyWindow)

	setStatus(StatusThinking)
	protocol := resolveProtocol(cfg, enableDeepThinking)

	var finalText string
	var err error
	switch protocol {
	case ProtocolDebate:
		addLog("THINKING", "Deep thinking engaged.", LogInfo)
		finalText, err = o.runDebate(ctx, keys, cfg, systemPrompt, contextBlock, userText, shortTerm, onChunk, addLog, setStatus)
	default:
		addLog("THINKING", "Thinking...", LogInfo)
		finalText, err = o.runSimple(ctx, keys, cfg, systemPrompt, userText, shortTerm, enableDeepThinking, onChunk, addLog, setStatus)
	}

	if err != nil {
		o.reportFailure(err, cfg, enableDeepThinking, onChunk, addLog)
		setStatus(StatusIdle)
		return
	}

	// Detached memory writes: never awaited, failures absorbed by the writer.
	writeCtx := context.WithoutCancel(ctx)
	go o.writer.Remember(writeCtx, finalText, store.MemoryKindAgentReflection, "", "")
	go o.writer.Remember(writeCtx, userText, store.MemoryKindUserInput, "", "")

	setStatus(StatusIdle)
}

// runSimple executes Protocol A: a single streamed completion re-emitted as
// the growing full response. A deep-thinking request without the debate
// switch still runs this protocol, only on the larger model.
func (o *Orchestrator) runSimple(
	ctx context.Context,
	keys []string,
	cfg CognitiveConfig,
	systemPrompt, userText, shortTerm string,
	deepThinking bool,
	onChunk ChunkFunc,
	addLog LogFunc,
	setStatus StatusFunc,
) (string, error) {
	setStatus(StatusSpeaking)
	addLog("NEURAL", "Generating response...", LogInfo)

	model := o.config.ChatModel
	if deepThinking {
		model = o.config.DeepModel
	}

	var full string
	meta := &Metadata{Model: model, Provider: o.provider, IsDeepThinking: deepThinking}
	return o.stream(ctx, keys, addLog, pluginai.StreamRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(userText, shortTerm),
		Temperature:  cfg.Temperature,
		Timeout:      timeout.DraftTimeout,
	}, func(delta string) {
		full += delta
		onChunk(full, meta)
	})
}

// runDebate executes Protocol B: drafting, critiquing and synthesis, strictly
// in that order. Any phase failure aborts the whole turn; completed phases
// are not retroactively invalidated, but the turn reports as failed.
func (o *Orchestrator) runDebate(
	ctx context.Context,
	keys []string,
	cfg CognitiveConfig,
	systemPrompt, contextBlock, userText, shortTerm string,
	onChunk ChunkFunc,
	addLog LogFunc,
	setStatus StatusFunc,
) (string, error) {
	// Phase 1: drafting. Streams metadata only; nothing user-visible yet.
	addLog("THINKING", "Phase 1: drafting initial reasoning...", LogInfo)
	var draft string
	_, err := o.stream(ctx, keys, addLog, pluginai.StreamRequest{
		Model:        o.config.DeepModel,
		SystemPrompt: systemPrompt + "\n\nPhase: Deep Thinking - Generate a comprehensive draft by correlating archive data with the request. Think step by step.",
		UserPrompt:   buildDraftPrompt(userText, shortTerm),
		Temperature:  cfg.Temperature,
		Timeout:      timeout.DraftTimeout,
	}, func(delta string) {
		draft += delta
		onChunk("", &Metadata{IsDeepThinking: true, Debate: &DebateMeta{Stage: StageDrafting, Draft: draft}})
	})
	if err != nil {
		return "", err
	}

	// Phase 2: critique on a fixed mid-size model at low temperature,
	// independent of the user's settings.
	setStatus(StatusReflecting)
	addLog("NEURAL", "Phase 2: critical reflection - auditing draft...", LogWarning)
	var critique string
	_, err = o.stream(ctx, keys, addLog, pluginai.StreamRequest{
		Model:        o.config.CritiqueModel,
		SystemPrompt: critiqueSystemPrompt,
		UserPrompt:   buildCritiquePrompt(draft, contextBlock, userText),
		Temperature:  0.3,
		Timeout:      timeout.CritiqueTimeout,
	}, func(delta string) {
		critique += delta
		onChunk("", &Metadata{IsDeepThinking: true, Debate: &DebateMeta{Stage: StageCritiquing, Draft: draft, Critique: critique}})
	})
	if err != nil {
		return "", err
	}

	// Phase 3: synthesis. The only phase whose streamed text becomes the
	// displayed message.
	setStatus(StatusEvolving)
	addLog("EVOLVE", "Phase 3: synthesis - finalizing response...", LogSuccess)
	setStatus(StatusSpeaking)

	var full string
	meta := &Metadata{
		Model:          o.config.DeepModel,
		Provider:       o.provider,
		IsDeepThinking: true,
		Debate:         &DebateMeta{Stage: StageCompleted, Draft: draft, Critique: critique},
	}
	return o.stream(ctx, keys, addLog, pluginai.StreamRequest{
		Model:        o.config.DeepModel,
		SystemPrompt: systemPrompt + "\n\nFinal Phase: Synthesize the draft and critique into a final response with confidence and warmth.",
		UserPrompt:   buildSynthesisPrompt(draft, critique, userText),
		Temperature:  cfg.Temperature * 0.8,
		Timeout:      timeout.DraftTimeout,
	}, func(delta string) {
		full += delta
		onChunk(full, meta)
	})
}

// stream runs one streamed completion with key fallback. Timeouts fail fast;
// every other failure rotates to the next key.
func (o *Orchestrator) stream(ctx context.Context, keys []string, addLog LogFunc, req pluginai.StreamRequest, onDelta func(string)) (string, error) {
	full, _, err := pluginai.TryKeysInOrder(ctx, keys, func(ctx context.Context, key string) (string, error) {
		r := req
		r.APIKey = key
		return o.completions.ChatStream(ctx, r, onDelta)
	}, pluginai.FailFastOnTimeout())
	if err != nil {
		addLog("NEURAL", "Streamed completion failed: "+err.Error(), LogError)
		return "", err
	}
	return full, nil
}

// reportFailure converts a terminal error into the user-visible message the
// conversation surfaces instead of an exception.
func (o *Orchestrator) reportFailure(err error, cfg CognitiveConfig, deepThinking bool, onChunk ChunkFunc, addLog LogFunc) {
	pool := o.config.KeyPool(cfg.APIKey)
	userKeySupplied := len(pool) == 1 && pool[0] == cfg.APIKey

	switch {
	case pluginai.IsAuth(err) && userKeySupplied:
		addLog("SECURITY", "Invalid API key.", LogError)
		onChunk("The link collapsed due to an invalid authentication token. Please check your API key in Settings.", nil)
	case errors.Is(err, pluginai.ErrAllKeysFailed) || pluginai.IsAuth(err):
		if deepThinking {
			addLog("SECURITY", "Deep thinking computation quota exhausted.", LogError)
			onChunk("Deep thinking computation quota exhausted. Please try again later.", nil)
		} else {
			addLog("SECURITY", "All default API keys failed.", LogError)
			onChunk("All API keys have been exhausted. Please configure a custom API key in Settings.", nil)
		}
	default:
		addLog("SYSTEM", "Link error: "+err.Error(), LogError)
		slog.Error("generation turn failed", "error", err)
		onChunk("A link error occurred. Re-aligning with the archive core.", nil)
	}
}
