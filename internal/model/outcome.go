package model

import "fmt"

// Action is what happened to a single FileSpec during a pass.
type Action int

const (
	// ActionCreated means the file did not exist and was written.
	ActionCreated Action = iota
	// ActionAppended means content was appended to an existing file.
	ActionAppended
	// ActionSkippedRules means at least one rule evaluated to false.
	ActionSkippedRules
	// ActionSkippedAppendMissing means append was requested on a missing file
	// without createIfNotExist.
	ActionSkippedAppendMissing
	// ActionSkippedDuplicate means the content was already present.
	ActionSkippedDuplicate
	// ActionExists means the file already exists and append was not requested.
	ActionExists
	// ActionFailed means a filesystem operation failed.
	ActionFailed
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionAppended:
		return "appended"
	case ActionSkippedRules:
		return "skipped (rules not met)"
	case ActionSkippedAppendMissing:
		return "skipped (append target missing)"
	case ActionSkippedDuplicate:
		return "skipped (content present)"
	case ActionExists:
		return "exists"
	case ActionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	for candidate := ActionCreated; candidate <= ActionFailed; candidate++ {
		if candidate.String() == string(text) {
			*a = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown action %q", text)
}

// Changed reports whether the action wrote to disk (or would have in a dry run).
func (a Action) Changed() bool {
	return a == ActionCreated || a == ActionAppended
}

// Verdict is the evaluated result of one rule.
type Verdict struct {
	Rule   Rule   `yaml:"rule"`
	Result bool   `yaml:"result"`
	Reason string `yaml:"reason,omitempty"`
}

// Outcome records how one FileSpec was materialized.
type Outcome struct {
	Spec     FileSpec  `yaml:"-"`
	Path     string    `yaml:"path"`
	Target   Path      `yaml:"target"`
	Action   Action    `yaml:"action"`
	Verdicts []Verdict `yaml:"verdicts,omitempty"`
	Err      string    `yaml:"error,omitempty"`

	// Before and After hold the file content around a create or append.
	Before string `yaml:"-"`
	After  string `yaml:"-"`
}

// Report is the persisted summary of one provisioning pass.
type Report struct {
	Workspace Workspace `yaml:"workspace"`
	DryRun    bool      `yaml:"dry_run"`
	Outcomes  []Outcome `yaml:"outcomes"`
}

// RuleCheck is the rule evaluation of one FileSpec without materializing it.
type RuleCheck struct {
	Path     string
	Verdicts []Verdict
	Pass     bool
}
