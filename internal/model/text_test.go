package model

import "testing"

func TestIsStorableText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"ASCII", "hello", true},
		{"空文字", "", true},
		{"マルチバイト", "今日の日記", true},
		{"NULバイト", "a\x00b", false},
		{"不正なUTF-8", "a\xffb", false},
		{"途中で切れたUTF-8", "\xe3\x81", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStorableText(tt.in); got != tt.want {
				t.Errorf("IsStorableText(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
