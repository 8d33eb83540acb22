// Package prompt turns policy text, prior turns and retrieved passages
// into the exact message sequence handed to the generation collaborator.
// Assembly is deterministic: identical inputs produce an identical
// prompt, which the response cache depends on.
package prompt

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/edabot/internal/core"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

const contextHeader = "Use the following retrieved documents to answer:\n\n"

// Prompt is the assembled model input. Key is the canonical flattened
// text of Messages and serves as the cache identity.
type Prompt struct {
	Messages []core.Turn
	Key      string
}

type Assembler struct {
	maxTokens  int
	maxHistory int
	// countTokens is swappable for tests; the default uses tiktoken.
	countTokens func(string) int
}

// NewAssembler builds an Assembler with a token budget and a hard cap on
// the number of history turns included; maxHistory <= 0 means no cap.
func NewAssembler(maxTokens, maxHistory int) *Assembler {
	return &Assembler{
		maxTokens:   maxTokens,
		maxHistory:  maxHistory,
		countTokens: countTokens,
	}
}

// Build assembles, in fixed order: policy, prior history oldest first,
// retrieved passage contents as one context block, and the current
// query. History beyond the turn cap is dropped oldest first, then
// over-budget prompts lose oldest history, then trailing passages;
// policy and query always survive.
func (a *Assembler) Build(policy string, history []core.Turn, passages []core.Passage, query string) Prompt {
	if a.maxHistory > 0 && len(history) > a.maxHistory {
		history = history[len(history)-a.maxHistory:]
	}

	for a.overBudget(policy, history, passages, query) {
		if len(history) > 0 {
			history = history[1:]
			continue
		}
		if len(passages) > 0 {
			passages = passages[:len(passages)-1]
			continue
		}
		break
	}

	messages := make([]core.Turn, 0, len(history)+3)
	messages = append(messages, core.Turn{Role: core.RoleSystem, Content: policy})
	messages = append(messages, history...)
	if block := contextBlock(passages); block != "" {
		messages = append(messages, core.Turn{Role: core.RoleSystem, Content: block})
	}
	messages = append(messages, core.Turn{Role: core.RoleUser, Content: query})

	return Prompt{
		Messages: messages,
		Key:      flatten(messages),
	}
}

func (a *Assembler) overBudget(policy string, history []core.Turn, passages []core.Passage, query string) bool {
	if a.maxTokens <= 0 {
		return false
	}
	if len(history) == 0 && len(passages) == 0 {
		return false
	}

	total := a.countTokens(policy) + a.countTokens(query)
	for _, turn := range history {
		total += a.countTokens(turn.Content)
	}
	total += a.countTokens(contextBlock(passages))

	return total > a.maxTokens
}

func contextBlock(passages []core.Passage) string {
	if len(passages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Content)
	}
	return sb.String()
}

// flatten produces the canonical textual form of the assembled messages.
// Control separators keep role and message boundaries unambiguous.
func flatten(messages []core.Turn) string {
	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(msg.Role)
		sb.WriteByte('\x1f')
		sb.WriteString(msg.Content)
		sb.WriteByte('\x1e')
	}
	return sb.String()
}

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}
