package prompt

import (
	"fmt"

	"github.com/antoniostano/kyra/internal/memory"
)

// Message roles as the completion API expects them.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in the ordered list sent to the completion API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Persona returns the conversational system prompt for a user. Pure: the
// same identifier always yields the same prompt.
func Persona(userID string) string {
	return fmt.Sprintf(
		"You are Kyra, a calm and thoughtful mentor speaking with %s. "+
			"You never claim to perform real-world actions on the user's behalf. "+
			"When information is missing, ask for it instead of guessing. "+
			"Explain your reasoning in plain, unhurried language.",
		userID,
	)
}

// AnalysisBrief returns the system prompt for the one-shot website review.
func AnalysisBrief() string {
	return "You are Kyra, a calm and precise website reviewer. " +
		"You will receive the visible text of a web page. " +
		"Identify concrete problems, UX issues, SEO risks and improvements, " +
		"and explain the reasoning behind each finding."
}

// WrapExcerpt embeds a page excerpt into the analysis request body.
func WrapExcerpt(excerpt string) string {
	return "Review the following website text and report problems, UX issues, " +
		"SEO risks and concrete improvements.\n\n" + excerpt
}

// Build assembles the ordered message list: exactly one leading system
// message, the memory window replayed verbatim in chronological order,
// then the new user message last. Pure and side-effect free.
func Build(systemPrompt string, window []memory.TurnRecord, newMessage string) []Message {
	msgs := make([]Message, 0, len(window)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: systemPrompt})
	for _, turn := range window {
		msgs = append(msgs, Message{Role: turn.Role, Content: turn.Content})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: newMessage})
	return msgs
}
