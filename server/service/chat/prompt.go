package chat

import (
	"fmt"
	"strings"
)

// contextPlaceholder is substituted with the recalled archive fragments.
const contextPlaceholder = "{{USER_PROFILE_CONTEXT}}"

// systemPromptTemplate is the base system instruction for every protocol.
// The archive context block takes absolute priority over general knowledge:
// when recalled fragments contradict the model's pretraining, the fragments
// win.
const systemPromptTemplate = `You are Akasha, a personal assistant backed by the user's local semantic archive.

PRINCIPLES:
- Ground every answer in the [USER PROFILE CONTEXT] block below whenever it is non-empty. Information there has absolute priority over your general knowledge; defer to it on any conflict.
- When the context is empty or irrelevant, answer from general knowledge and say so plainly.
- Never invent archive contents. If the user asks about their documents and the context holds nothing relevant, tell them the archive has no matching records.
- Be precise and warm. Prefer concrete, actionable answers over generic advice.

[USER PROFILE CONTEXT]
` + contextPlaceholder + `
`

// critiqueSystemPrompt drives the second debate phase. It runs on a fixed
// mid-size model at low temperature, independent of user settings.
const critiqueSystemPrompt = `You are a critical auditor. Analyze the draft response for accuracy, completeness, logical consistency, and alignment with the archive context. Flag any data hallucinations or gaps. Provide a concise critique focusing on the improvements needed.`

// buildContextBlock renders the recalled fragments as the archive context
// block shared by the system prompt and the critique phase.
func buildContextBlock(memories []string) string {
	if len(memories) == 0 {
		return "THE ARCHIVE IS CURRENTLY EMPTY OR NO RELEVANT DATA WAS FOUND."
	}
	return fmt.Sprintf("[USER ARCHIVE CONTEXT - %d relevant fragments found]\n\n%s\n\n[END OF ARCHIVE CONTEXT]",
		len(memories), strings.Join(memories, "\n\n---\n\n"))
}

// buildSystemPrompt substitutes the archive context into the base template.
func buildSystemPrompt(contextBlock string) string {
	return strings.ReplaceAll(systemPromptTemplate, contextPlaceholder, contextBlock)
}

// formatHistory renders the short-term conversation window for the user turn.
func formatHistory(history []Message, window int) string {
	if len(history) > window {
		history = history[len(history)-window:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(m.Role), m.Content))
	}
	return strings.Join(lines, "\n")
}

func buildUserPrompt(userText, shortTerm string) string {
	return fmt.Sprintf("USER REQUEST: %s\n\nCHAT HISTORY:\n%s", userText, shortTerm)
}

func buildDraftPrompt(userText, shortTerm string) string {
	return fmt.Sprintf(`Think deeply about this question. Consider multiple perspectives, analyze the archive context carefully, and reason step by step. Generate a comprehensive draft response.

USER REQUEST: %s

CHAT HISTORY:
%s

Think through this systematically:
1. What is the core question being asked?
2. What relevant information exists in the archive context?
3. What are the key points to address?
4. How can I synthesize this into a clear, accurate response?`, userText, shortTerm)
}

func buildCritiquePrompt(draft, archiveContext, userText string) string {
	return fmt.Sprintf(`Review this draft response critically. Check for:
1. Accuracy: Does it match the archive context?
2. Completeness: Are all aspects addressed?
3. Logic: Are there any gaps or contradictions?
4. Clarity: Is the response clear and well-structured?

DRAFT:
%s

ARCHIVE CONTEXT:
%s

USER REQUEST:
%s

Provide a concise critique focusing on improvements needed.`, draft, archiveContext, userText)
}

func buildSynthesisPrompt(draft, critique, userText string) string {
	return fmt.Sprintf(`Based on the draft and critique, generate the final response. Integrate the best elements from the draft while addressing the critique's concerns.

DRAFT:
%s

CRITIQUE:
%s

USER REQUEST:
%s

Generate a final response that is accurate, complete, and well-structured.`, draft, critique, userText)
}
