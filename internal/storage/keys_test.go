package storage

import (
	"strings"
	"testing"
)

// ========== SanitizeFileName 测试 ==========

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean name",
			input:    "report.csv",
			expected: "report.csv",
		},
		{
			name:     "spaces and parens",
			input:    "my workflow (v2).json",
			expected: "my_workflow__v2_.json",
		},
		{
			name:     "path separators",
			input:    "../../etc/passwd",
			expected: ".._.._etc_passwd",
		},
		{
			name:     "unicode",
			input:    "流程图.json",
			expected: "___.json",
		},
		{
			name:     "dashes and dots kept",
			input:    "a-b.c-d.json",
			expected: "a-b.c-d.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeFileName(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// ========== FolderPrefix / ObjectKey 测试 ==========

func TestFolderPrefix(t *testing.T) {
	prefix := FolderPrefix("u1", "w1")
	if prefix != "workflows/u1/w1/" {
		t.Errorf("FolderPrefix() = %q, want %q", prefix, "workflows/u1/w1/")
	}
}

func TestObjectKey_SharesFolderPrefix(t *testing.T) {
	prefix := FolderPrefix("u1", "w1")

	keyA := ObjectKey("u1", "w1", "a.json", 100)
	keyB := ObjectKey("u1", "w1", "b.json", 200)

	if !strings.HasPrefix(keyA, prefix) {
		t.Errorf("ObjectKey %q does not share prefix %q", keyA, prefix)
	}
	if !strings.HasPrefix(keyB, prefix) {
		t.Errorf("ObjectKey %q does not share prefix %q", keyB, prefix)
	}
	if keyA[:len(prefix)] != keyB[:len(prefix)] {
		t.Errorf("keys of the same workflow must share the folder prefix")
	}
}

func TestObjectKey_UniqueSuffix(t *testing.T) {
	// 同名文件、不同后缀，键绝不相同
	keyA := ObjectKey("u1", "w1", "report.csv", 1)
	keyB := ObjectKey("u1", "w1", "report.csv", 2)

	if keyA == keyB {
		t.Errorf("same filename with distinct suffixes must produce distinct keys, got %q twice", keyA)
	}
}

func TestObjectKey_DistinctWorkflows(t *testing.T) {
	keyA := ObjectKey("u1", "w1", "a.json", 1)
	keyB := ObjectKey("u1", "w2", "a.json", 1)
	keyC := ObjectKey("u2", "w1", "a.json", 1)

	if keyA == keyB || keyA == keyC || keyB == keyC {
		t.Errorf("keys must differ across (owner, workflow) pairs: %q %q %q", keyA, keyB, keyC)
	}
}

func TestObjectKey_SanitizesFilename(t *testing.T) {
	key := ObjectKey("u1", "w1", "my file?.json", 42)
	expected := "workflows/u1/w1/42-my_file_.json"
	if key != expected {
		t.Errorf("ObjectKey() = %q, want %q", key, expected)
	}
}

func TestAvatarKey(t *testing.T) {
	key := AvatarKey("u1", ".png", 42)
	expected := "avatars/u1/avatar-42.png"
	if key != expected {
		t.Errorf("AvatarKey() = %q, want %q", key, expected)
	}
}
