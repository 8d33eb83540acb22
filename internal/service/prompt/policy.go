package prompt

import (
	_ "embed"
	"os"
)

//go:embed policy_default.md
var defaultPolicy string

// PolicyPathConfig supplies the location of the operator-editable policy
// override.
type PolicyPathConfig interface {
	GetPolicyPath() string
}

type Policy struct {
	cfg PolicyPathConfig
}

func NewPolicy(cfg PolicyPathConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Text returns the system policy: the operator's POLICY.md when present,
// the embedded default otherwise. The policy carries the scope,
// disclosure and tone rules the model is expected to follow; nothing in
// the orchestrator re-checks them programmatically.
func (p *Policy) Text() string {
	content, err := os.ReadFile(p.cfg.GetPolicyPath())
	if err != nil || len(content) == 0 {
		return defaultPolicy
	}
	return string(content)
}
