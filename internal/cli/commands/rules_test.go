package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRulesCommand_ListAll(t *testing.T) {
	stdout, _, err := executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), "markdown"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Validation Rules")
	for _, id := range []string{"DSL01", "DSL02", "DSL03", "DSL04"} {
		assert.Contains(t, stdout, id)
	}
	assert.Contains(t, stdout, "Relationships")
	assert.Less(t, strings.Index(stdout, "DSL01"), strings.Index(stdout, "DSL04"), "rules are listed in ID order")
}

func TestRulesCommand_Text(t *testing.T) {
	stdout, _, err := executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), "text"), "--details")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Validation Rules (4)")
	assert.Contains(t, stdout, "route-definitions")
	assert.Contains(t, stdout, "duplicate model name (error)")
	assert.Contains(t, stdout, "Why:")
	assert.Contains(t, stdout, "forge rules <rule-id>")
}

func TestRulesCommand_FilterByGroup(t *testing.T) {
	stdout, _, err := executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), "json"), "--group", "routes")
	require.NoError(t, err)

	var result RulesOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "DSL03", result.Rules[0].ID)
}

func TestRulesCommand_JSON(t *testing.T) {
	stdout, _, err := executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), "json"))
	require.NoError(t, err)

	var result RulesOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 4, result.Count)
	assert.Len(t, result.Rules, result.Count)
	for _, rule := range result.Rules {
		assert.NotEmpty(t, rule.Name, rule.ID)
		assert.NotEmpty(t, rule.Checks, rule.ID)
	}
}

func TestRulesCommand_ShowSpecificRule(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		args    []string
		wantOut []string
	}{
		{
			name:    "markdown",
			mode:    "markdown",
			args:    []string{"DSL04"},
			wantOut: []string{"# DSL04 - relationship-definitions", "## Bad Example", "```python"},
		},
		{
			name:    "text",
			mode:    "text",
			args:    []string{"DSL02"},
			wantOut: []string{"DSL02 - field-definitions", "Good Example", "Checks"},
		},
		{
			name:    "case insensitive",
			mode:    "markdown",
			args:    []string{"dsl01"},
			wantOut: []string{"# DSL01 - model-definitions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), tt.mode), tt.args...)
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestRulesCommand_SingleRuleStructured(t *testing.T) {
	stdout, _, err := executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), "json"), "DSL03")
	require.NoError(t, err)

	var rule core.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &rule))
	assert.Equal(t, "DSL03", rule.ID)
	assert.Equal(t, "routes", rule.Group)

	stdout, _, err = executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), "yaml"), "DSL03")
	require.NoError(t, err)

	var asYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &asYAML))
	assert.Equal(t, "DSL03", asYAML["id"])
}

func TestRulesCommand_NotFound(t *testing.T) {
	_, _, err := executeCommand(t, NewRulesCommand(), testConfig(t.TempDir(), "markdown"), "INVALID99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTruncateOneLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"needs truncation", "hello world", 8, "hello..."},
		{"multiline", "hello\nworld", 20, "hello world"},
		{"multiline truncated", "hello\nworld", 8, "hello..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, truncateOneLine(tc.input, tc.maxLen))
		})
	}
}
