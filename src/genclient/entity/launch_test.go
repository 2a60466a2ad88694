package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeRuleMatches(t *testing.T) {
	rule := ScopeRule{Scheme: "file", LanguageID: "gen"}

	tests := []struct {
		scheme     string
		languageID string
		want       bool
	}{
		{scheme: "file", languageID: "gen", want: true},
		{scheme: "file", languageID: "go", want: false},
		{scheme: "untitled", languageID: "gen", want: false},
		{scheme: "vscode-vfs", languageID: "go", want: false},
		{scheme: "", languageID: "", want: false},
		{scheme: "file", languageID: "", want: false},
		{scheme: "", languageID: "gen", want: false},
		{scheme: "FILE", languageID: "gen", want: false},
		{scheme: "file", languageID: "GEN", want: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.scheme, tt.languageID), func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Matches(tt.scheme, tt.languageID))
		})
	}
}

func TestNewWatchRule(t *testing.T) {
	rule := NewWatchRule(".gen")
	assert.Equal(t, "**/*.gen", rule.Pattern)
}

func TestWatchRuleMatches(t *testing.T) {
	rule := NewWatchRule(".gen")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "top level", path: "a.gen", want: true},
		{name: "nested", path: "src/deep/nested/b.gen", want: true},
		{name: "absolute", path: "/workspace/c.gen", want: true},
		{name: "wrong extension", path: "src/main.go", want: false},
		{name: "extension prefix only", path: "src/a.gens", want: false},
		{name: "directory named like match", path: "src/a.gen/readme.md", want: false},
		{name: "hidden file", path: "src/.hidden.gen", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Matches(tt.path))
		})
	}
}

func TestSessionStateString(t *testing.T) {
	tests := []struct {
		state SessionState
		want  string
	}{
		{SessionUninitialized, "uninitialized"},
		{SessionStarting, "starting"},
		{SessionRunning, "running"},
		{SessionStopping, "stopping"},
		{SessionStopped, "stopped"},
		{SessionState(42), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestSessionStateTerminal(t *testing.T) {
	assert.True(t, SessionStopped.Terminal())
	assert.False(t, SessionRunning.Terminal())
	assert.False(t, SessionUninitialized.Terminal())
}
