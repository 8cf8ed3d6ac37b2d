package tui

import (
	"strings"
	"testing"
)

func TestEditRuneAddCharacters(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "a", "a"},
		{"append letter", "ole", "n", "olen"},
		{"append digit", "abc", "1", "abc1"},
		{"append at sign", "olena", "@", "olena@"},
		{"append special", "pa$", "!", "pa$!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, tc.key)
			if got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneBackspace(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"backspace on single char", "a", ""},
		{"backspace on longer string", "hello", "hell"},
		{"backspace on empty does nothing", "", ""},
		{"backspace removes whole rune", "Київ", "Киї"},
		{"backspace removes emoji", "go\U0001f6eb", "go"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, "backspace")
			if got != tc.want {
				t.Errorf("editRune(%q, 'backspace') = %q, want %q", tc.start, got, tc.want)
			}
		})
	}
}

func TestEditRuneIgnoresNamedKeys(t *testing.T) {
	named := []string{"enter", "esc", "up", "down", "tab", "shift+tab", "ctrl+c", "ctrl+r", "pgup", "f1"}

	original := "hello"
	for _, key := range named {
		t.Run(key, func(t *testing.T) {
			if got := editRune(original, key); got != original {
				t.Errorf("editRune(%q, %q) = %q, want unchanged", original, key, got)
			}
		})
	}
}

func TestEditRuneMaxInputLen(t *testing.T) {
	atLimit := strings.Repeat("a", maxInputLen)
	belowLimit := strings.Repeat("a", maxInputLen-1)

	if got := editRune(atLimit, "b"); got != atLimit {
		t.Errorf("at limit accepted a new rune, len=%d", len([]rune(got)))
	}
	if got := editRune(belowLimit, "b"); got != belowLimit+"b" {
		t.Errorf("below limit rejected a new rune, len=%d", len([]rune(got)))
	}
	if got := editRune(atLimit, "backspace"); len([]rune(got)) != maxInputLen-1 {
		t.Errorf("backspace at limit: len=%d", len([]rune(got)))
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"under limit", "PS101", 10, "PS101"},
		{"at limit", "PS101", 5, "PS101"},
		{"over limit", "Boryspil International", 5, "Bory…"},
		{"empty string", "", 5, ""},
		{"CJK chars", "你好世界", 3, "你好…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncStr(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateToHeight(t *testing.T) {
	input := "line1\nline2\nline3\nline4\nline5\n"

	result := truncateToHeight(input, 3)
	if strings.Count(result, "\n") > 3 || strings.Contains(result, "line4") {
		t.Errorf("truncateToHeight(5 lines, 3) = %q", result)
	}
	if got := truncateToHeight(input, 10); got != input {
		t.Errorf("within limit changed input: %q", got)
	}
	if got := truncateToHeight(input, 0); got != input {
		t.Errorf("maxLines=0 changed input: %q", got)
	}
	if got := truncateToHeight(input, -1); got != input {
		t.Errorf("maxLines=-1 changed input: %q", got)
	}
}

func TestRenderFieldMasksPassword(t *testing.T) {
	got := renderField("password", "s3cret", true, false)
	if strings.Contains(got, "s3cret") {
		t.Errorf("masked field leaked its value: %q", got)
	}
	if !strings.Contains(got, "••••••") {
		t.Errorf("masked field = %q, want six bullets", got)
	}

	plain := renderField("username", "olena", false, true)
	if !strings.Contains(plain, "olena") {
		t.Errorf("plain field = %q, want value shown", plain)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("KBP", 5); got != "KBP  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("toolong", 3); got != "toolong" {
		t.Errorf("padRight should not truncate, got %q", got)
	}
}
