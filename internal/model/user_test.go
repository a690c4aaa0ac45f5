package model

import "testing"

// ========== IsAdmin 测试 ==========

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{
			name:     "lowercase admin",
			role:     "admin",
			expected: true,
		},
		{
			name:     "uppercase admin", // 历史数据中的写法
			role:     "ADMIN",
			expected: true,
		},
		{
			name:     "regular user",
			role:     "user",
			expected: false,
		},
		{
			name:     "empty role",
			role:     "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if u.IsAdmin() != tt.expected {
				t.Errorf("IsAdmin() with role %q = %v, want %v", tt.role, u.IsAdmin(), tt.expected)
			}
		})
	}
}
