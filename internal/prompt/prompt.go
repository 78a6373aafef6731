// Package prompt assembles the completion-request prompt from persona
// metadata, retrieved memory context, and the user's question.
package prompt

import (
	"fmt"
	"strings"

	"github.com/personachat/personachat/internal/persona"
)

// Markers delimiting the memory section. Present in the output only when
// a non-empty memory context is supplied.
const (
	MemorySectionOpen  = "=== WHAT YOU REMEMBER ABOUT THIS USER ==="
	MemorySectionClose = "=== END OF MEMORY ==="
)

// Build produces the single instruction block sent to the completion
// backend. Pure and deterministic: no network or storage access, and the
// question and memory context are embedded verbatim.
func Build(p *persona.Persona, question, memoryContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a chatbot with the %s personality type (%s).\n", p.Code, p.Description)
	fmt.Fprintf(&b, "Respond as a %s chatbot would: let this type's cognitive preferences, communication style, and decision-making approach shape your answer. ", p.Code)
	b.WriteString("You are the chatbot in this conversation - never speak as or for the user.\n")

	if memoryContext != "" {
		b.WriteString("\n")
		b.WriteString(MemorySectionOpen)
		b.WriteString("\n")
		b.WriteString(memoryContext)
		b.WriteString("\n")
		b.WriteString(MemorySectionClose)
		b.WriteString("\n")
		b.WriteString("Use any facts about the user found in the memory above, including their name, whenever they are relevant to your answer.\n")
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n\nResponse:", question)

	return b.String()
}
