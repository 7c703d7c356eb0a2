package model

// Path represents a file system path.
type Path string

// FileSpec describes one file that should exist in the workspace.
type FileSpec struct {
	// Path is relative to the workspace root.
	Path             string `mapstructure:"path" yaml:"path"`
	Content          string `mapstructure:"content" yaml:"content,omitempty"`
	Append           bool   `mapstructure:"append" yaml:"append,omitempty"`
	CreateIfNotExist bool   `mapstructure:"createIfNotExist" yaml:"createIfNotExist,omitempty"`
	Rules            []Rule `mapstructure:"rules" yaml:"rules,omitempty"`
}

// HasRules reports whether the spec is gated by at least one rule.
func (f FileSpec) HasRules() bool {
	return len(f.Rules) > 0
}

// Workspace is the directory a provisioning pass operates in.
// An empty Root means no workspace is open.
type Workspace struct {
	Root Path   `yaml:"root"`
	Name string `yaml:"name"`
}

// IsOpen reports whether a workspace root is available.
func (w Workspace) IsOpen() bool {
	return w.Root != ""
}
