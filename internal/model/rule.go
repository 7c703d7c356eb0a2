// Package model defines the data structures for workspace provisioning.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// RuleType is the tag that selects how a rule is evaluated.
type RuleType string

const (
	// RuleFileNotExists passes when the path does not exist.
	RuleFileNotExists RuleType = "fileNotExists"
	// RuleEnvVarSet passes when the environment variable has a non-empty value.
	RuleEnvVarSet RuleType = "envVarSet"
	// RuleFileExistsGlob passes when at least one workspace file matches the pattern.
	RuleFileExistsGlob RuleType = "fileExistsGlob"
	// RuleFolderExists passes when the path exists and is a directory.
	RuleFolderExists RuleType = "folderExists"
	// RuleSettingEquals passes when a setting, stringified, equals the expected value.
	RuleSettingEquals RuleType = "settingEquals"
	// RuleFileContains passes when a file contains a literal substring.
	RuleFileContains RuleType = "fileContains"
	// RuleWorkspaceName passes when the open workspace has the given name.
	RuleWorkspaceName RuleType = "workspaceName"
)

// Payload delimiters for the overloaded Value field.
const (
	settingDelimiter  = "="
	containsDelimiter = "|"
)

var (
	// ErrUnknownRuleKind is returned when a rule type tag is not recognized.
	ErrUnknownRuleKind = errors.New("unknown rule type")
	// ErrMalformedPayload is returned when a rule value lacks a required delimiter.
	ErrMalformedPayload = errors.New("malformed rule value")
)

// RuleTypes lists every recognized rule type.
func RuleTypes() []RuleType {
	return []RuleType{
		RuleFileNotExists,
		RuleEnvVarSet,
		RuleFileExistsGlob,
		RuleFolderExists,
		RuleSettingEquals,
		RuleFileContains,
		RuleWorkspaceName,
	}
}

// Rule is a predicate as it appears in configuration.
//
// Value carries the payload in its compact form ("key=value" for
// settingEquals, "path|substring" for fileContains). The structured fields
// may be used instead and win over Value when set.
type Rule struct {
	Type      RuleType `mapstructure:"type" yaml:"type"`
	Value     string   `mapstructure:"value" yaml:"value,omitempty"`
	Key       string   `mapstructure:"key" yaml:"key,omitempty"`
	Expected  string   `mapstructure:"expected" yaml:"expected,omitempty"`
	Path      string   `mapstructure:"path" yaml:"path,omitempty"`
	Substring string   `mapstructure:"substring" yaml:"substring,omitempty"`
}

// String renders the rule the way it is written in configuration.
func (r Rule) String() string {
	return fmt.Sprintf("%s(%s)", r.Type, r.Value)
}

// Predicate is the parsed, typed form of a Rule.
type Predicate interface {
	Kind() RuleType
}

// FileNotExists checks that Path is absent.
type FileNotExists struct{ Path string }

// EnvVarSet checks that the environment variable Name is non-empty.
type EnvVarSet struct{ Name string }

// FileExistsGlob checks that Pattern matches at least one workspace file.
type FileExistsGlob struct{ Pattern string }

// FolderExists checks that Path is an existing directory.
type FolderExists struct{ Path string }

// SettingEquals checks that the setting Key stringifies to Expected.
type SettingEquals struct {
	Key      string
	Expected string
}

// FileContains checks that the file at Path contains Substring.
type FileContains struct {
	Path      string
	Substring string
}

// WorkspaceName checks the name of the open workspace.
type WorkspaceName struct{ Name string }

// Kind implements Predicate.
func (FileNotExists) Kind() RuleType { return RuleFileNotExists }

// Kind implements Predicate.
func (EnvVarSet) Kind() RuleType { return RuleEnvVarSet }

// Kind implements Predicate.
func (FileExistsGlob) Kind() RuleType { return RuleFileExistsGlob }

// Kind implements Predicate.
func (FolderExists) Kind() RuleType { return RuleFolderExists }

// Kind implements Predicate.
func (SettingEquals) Kind() RuleType { return RuleSettingEquals }

// Kind implements Predicate.
func (FileContains) Kind() RuleType { return RuleFileContains }

// Kind implements Predicate.
func (WorkspaceName) Kind() RuleType { return RuleWorkspaceName }

// ParseRule converts a configured rule into its typed predicate.
func ParseRule(rule Rule) (Predicate, error) {
	switch rule.Type {
	case RuleFileNotExists:
		return FileNotExists{Path: rule.Value}, nil
	case RuleEnvVarSet:
		return EnvVarSet{Name: rule.Value}, nil
	case RuleFileExistsGlob:
		return FileExistsGlob{Pattern: rule.Value}, nil
	case RuleFolderExists:
		return FolderExists{Path: rule.Value}, nil
	case RuleWorkspaceName:
		return WorkspaceName{Name: rule.Value}, nil
	case RuleSettingEquals:
		if rule.Key != "" {
			return SettingEquals{Key: rule.Key, Expected: rule.Expected}, nil
		}

		key, expected, ok := strings.Cut(rule.Value, settingDelimiter)
		if !ok {
			return nil, fmt.Errorf("%w for %s: %q has no %q", ErrMalformedPayload, rule.Type, rule.Value, settingDelimiter)
		}

		return SettingEquals{Key: key, Expected: expected}, nil
	case RuleFileContains:
		if rule.Path != "" {
			return FileContains{Path: rule.Path, Substring: rule.Substring}, nil
		}

		path, substring, ok := strings.Cut(rule.Value, containsDelimiter)
		if !ok {
			return nil, fmt.Errorf("%w for %s: %q has no %q", ErrMalformedPayload, rule.Type, rule.Value, containsDelimiter)
		}

		return FileContains{Path: path, Substring: substring}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownRuleKind, rule.Type)
}
