package weight

import (
	"strings"

	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/graph"
)

// Policy selects how a seed's budget is split across its dependencies.
type Policy string

// Supported policies.
const (
	// PolicyEven gives every seed 1/|seeds| of the root budget and every
	// unique child 1/|children| of its seed's budget.
	PolicyEven Policy = "even"

	// PolicyHalf splits one global budget: 0.5 across all seeds, 0.5 across
	// all seed→dependency links. Weights are not normalized per parent.
	PolicyHalf Policy = "half"

	// PolicySelfLoop is PolicyEven at the root, but each seed keeps a share
	// of its own budget through a self-loop edge.
	PolicySelfLoop Policy = "selfloop"
)

// Default option values.
const (
	DefaultPolicy = PolicyEven
	DefaultRetain = 0.2 // self-loop share of a seed with children (PolicySelfLoop)
)

// policyAliases maps accepted spellings to policies.
var policyAliases = map[string]Policy{
	"even":      PolicyEven,
	"a":         PolicyEven,
	"half":      PolicyHalf,
	"b":         PolicyHalf,
	"selfloop":  PolicySelfLoop,
	"self-loop": PolicySelfLoop,
	"c":         PolicySelfLoop,
}

// Policies lists the canonical policy names.
var Policies = []Policy{PolicyEven, PolicyHalf, PolicySelfLoop}

// ParsePolicy resolves a policy name (case-insensitive; "a", "b" and "c" are
// accepted as aliases). Unknown names yield a CONFIGURATION_ERROR.
func ParsePolicy(name string) (Policy, error) {
	if p, ok := policyAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return "", errors.Configuration("unknown policy %q (must be one of: even, half, selfloop)", name)
}

// String returns the canonical policy name.
func (p Policy) String() string { return string(p) }

// Options configures [Assign].
type Options struct {
	Policy Policy  `json:"policy" toml:"policy"`
	Root   string  `json:"root,omitempty" toml:"root"`     // Root sentinel; defaults to graph.DefaultRoot
	Retain float64 `json:"retain,omitempty" toml:"retain"` // Self-loop share for PolicySelfLoop; defaults to DefaultRetain
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	if o.Root == "" {
		o.Root = graph.DefaultRoot
	}
	if o.Retain == 0 {
		o.Retain = DefaultRetain
	}
}

// Validate applies defaults and checks option values. The policy name is
// normalized, so aliases like "c" are accepted.
func (o *Options) Validate() error {
	o.SetDefaults()
	p, err := ParsePolicy(string(o.Policy))
	if err != nil {
		return err
	}
	o.Policy = p
	if err := errors.ValidateNodeID(o.Root); err != nil {
		return errors.Configuration("invalid root %q: %s", o.Root, errors.UserMessage(err))
	}
	if o.Retain <= 0 || o.Retain >= 1 {
		return errors.Configuration("retain must be in (0, 1), got %v", o.Retain)
	}
	return nil
}
