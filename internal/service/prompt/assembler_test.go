package prompt

import (
	"strings"
	"testing"

	"github.com/sandevgo/edabot/internal/core"
)

// wordCounter keeps assembler tests independent of the tiktoken BPE data.
func wordCounter(s string) int {
	return len(strings.Fields(s))
}

func newTestAssembler(maxTokens int) *Assembler {
	a := NewAssembler(maxTokens, 0)
	a.countTokens = wordCounter
	return a
}

func TestAssembler_Order(t *testing.T) {
	a := newTestAssembler(0)

	history := []core.Turn{
		{Role: core.RoleUser, Content: "first question"},
		{Role: core.RoleAssistant, Content: "first answer"},
	}
	passages := []core.Passage{
		{Content: "passage one", Score: 0.9},
		{Content: "passage two", Score: 0.8},
	}

	p := a.Build("policy text", history, passages, "second question")

	if len(p.Messages) != 5 {
		t.Fatalf("message count = %d, want 5", len(p.Messages))
	}
	if p.Messages[0].Role != core.RoleSystem || p.Messages[0].Content != "policy text" {
		t.Errorf("messages[0] = %+v, want system policy first", p.Messages[0])
	}
	if p.Messages[1].Content != "first question" || p.Messages[2].Content != "first answer" {
		t.Errorf("history not in oldest-first order: %+v", p.Messages[1:3])
	}
	ctx := p.Messages[3]
	if ctx.Role != core.RoleSystem || !strings.Contains(ctx.Content, "passage one") || !strings.Contains(ctx.Content, "passage two") {
		t.Errorf("messages[3] = %+v, want context block with both passages", ctx)
	}
	if strings.Index(ctx.Content, "passage one") > strings.Index(ctx.Content, "passage two") {
		t.Error("passages must keep retrieval order")
	}
	last := p.Messages[len(p.Messages)-1]
	if last.Role != core.RoleUser || last.Content != "second question" {
		t.Errorf("last message = %+v, want the current query", last)
	}
}

func TestAssembler_Deterministic(t *testing.T) {
	a := newTestAssembler(0)

	history := []core.Turn{{Role: core.RoleUser, Content: "q"}}
	passages := []core.Passage{{Content: "p", Score: 1}}

	p1 := a.Build("policy", history, passages, "query")
	p2 := a.Build("policy", history, passages, "query")

	if p1.Key != p2.Key {
		t.Error("identical inputs must yield an identical key")
	}
}

func TestAssembler_KeyDistinguishesInputs(t *testing.T) {
	a := newTestAssembler(0)

	base := a.Build("policy", nil, nil, "query")

	tests := []struct {
		name string
		p    Prompt
	}{
		{"different query", a.Build("policy", nil, nil, "other")},
		{"different policy", a.Build("other policy", nil, nil, "query")},
		{"with history", a.Build("policy", []core.Turn{{Role: core.RoleUser, Content: "q"}}, nil, "query")},
		{"with passages", a.Build("policy", nil, []core.Passage{{Content: "p"}}, "query")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Key == base.Key {
				t.Error("distinct inputs must yield distinct keys")
			}
		})
	}
}

func TestAssembler_NoPassagesOmitsContextBlock(t *testing.T) {
	a := newTestAssembler(0)

	p := a.Build("policy", nil, nil, "query")

	if len(p.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(p.Messages))
	}
}

func TestAssembler_TrimsOldestHistoryFirst(t *testing.T) {
	a := newTestAssembler(10)

	history := []core.Turn{
		{Role: core.RoleUser, Content: "oldest turn with quite a few extra words in it"},
		{Role: core.RoleAssistant, Content: "newest"},
	}

	p := a.Build("policy", history, nil, "query")

	flat := p.Key
	if strings.Contains(flat, "oldest turn") {
		t.Error("oldest history turn should have been trimmed")
	}
	if !strings.Contains(flat, "newest") {
		t.Error("newest history turn should survive")
	}
	if !strings.Contains(flat, "policy") || !strings.Contains(flat, "query") {
		t.Error("policy and query must always survive")
	}
}

func TestAssembler_TrimsTrailingPassagesAfterHistory(t *testing.T) {
	a := newTestAssembler(11)

	passages := []core.Passage{
		{Content: "first passage"},
		{Content: "second passage with many additional words attached to it"},
	}

	p := a.Build("policy", nil, passages, "query")

	if strings.Contains(p.Key, "second passage") {
		t.Error("trailing passage should have been trimmed")
	}
	if !strings.Contains(p.Key, "first passage") {
		t.Error("leading passage should survive")
	}
}

func TestAssembler_HistoryTurnCap(t *testing.T) {
	a := NewAssembler(0, 2)
	a.countTokens = wordCounter

	history := []core.Turn{
		{Role: core.RoleUser, Content: "dropped"},
		{Role: core.RoleUser, Content: "kept one"},
		{Role: core.RoleAssistant, Content: "kept two"},
	}

	p := a.Build("policy", history, nil, "query")

	if strings.Contains(p.Key, "dropped") {
		t.Error("turns beyond the cap should be dropped oldest first")
	}
	if !strings.Contains(p.Key, "kept one") || !strings.Contains(p.Key, "kept two") {
		t.Error("most recent turns must survive the cap")
	}
}

func TestAssembler_ZeroBudgetDisablesTrimming(t *testing.T) {
	a := newTestAssembler(0)

	history := make([]core.Turn, 100)
	for i := range history {
		history[i] = core.Turn{Role: core.RoleUser, Content: "turn"}
	}

	p := a.Build("policy", history, nil, "query")

	if len(p.Messages) != 102 {
		t.Errorf("message count = %d, want 102", len(p.Messages))
	}
}
