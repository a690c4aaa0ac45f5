package workflow

import (
	"encoding/json"
	"testing"
)

// ========== normalizeContent 测试 ==========

func TestNormalizeContent_ValidJSONPassesThrough(t *testing.T) {
	input := `{"nodes":[],"connections":{}}`

	result, err := normalizeContent(input)
	if err != nil {
		t.Fatalf("normalizeContent() error = %v", err)
	}
	if result != input {
		t.Errorf("normalizeContent() = %q, want input unchanged %q", result, input)
	}
}

func TestNormalizeContent_RepairsSloppyExports(t *testing.T) {
	// n8n 导出被手工编辑后常见的问题：尾逗号、单引号
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "trailing comma",
			input: `{"nodes":[1,2,]}`,
		},
		{
			name:  "single quotes",
			input: `{'name': 'etl'}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizeContent(tt.input)
			if err != nil {
				t.Fatalf("normalizeContent(%q) error = %v", tt.input, err)
			}
			if !json.Valid([]byte(result)) {
				t.Errorf("normalizeContent(%q) = %q, not valid JSON", tt.input, result)
			}
		})
	}
}
