package entity

import (
	"path/filepath"
	"strings"
)

// LaunchSpec describes how to invoke the external analysis process.
// It is produced once per activation and immutable after construction.
type LaunchSpec struct {
	Command string   `json:"command" zap:"command"`
	Environ []string `json:"-" zap:"-"`
}

// LaunchConfigs holds the run and debug launch profiles.
// Both are resolved from the same inputs and are identical; the split is kept
// so a future debug profile can diverge without changing callers.
type LaunchConfigs struct {
	Run   LaunchSpec
	Debug LaunchSpec
}

// ScopeRule selects which documents are synchronized with a session.
type ScopeRule struct {
	Scheme     string `yaml:"scheme"`
	LanguageID string `yaml:"languageId"`
}

// Matches reports whether a document with the given scheme and language
// identifier is in scope. Both fields must match exactly.
func (r ScopeRule) Matches(scheme, languageID string) bool {
	return scheme == r.Scheme && languageID == r.LanguageID
}

// WatchRule is a glob pattern describing filesystem paths whose change events
// must be forwarded to the session even when not open as documents.
type WatchRule struct {
	Pattern string `yaml:"pattern"`
}

// NewWatchRule returns the recursive watch rule for a file extension.
// The extension is expected to include its leading dot.
func NewWatchRule(ext string) WatchRule {
	return WatchRule{Pattern: "**/*" + ext}
}

// Matches reports whether the given path matches the rule. The rule is
// recursive, so only the base name is matched against the final segment.
func (r WatchRule) Matches(path string) bool {
	pattern := r.Pattern
	if i := strings.LastIndex(pattern, "/"); i >= 0 {
		pattern = pattern[i+1:]
	}
	ok, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && ok
}
