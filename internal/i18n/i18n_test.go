package i18n

import "testing"

func TestFor(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"", "Contents"},
		{"en", "Contents"},
		{"en-GB", "Contents"},
		{"zh", "目录"},
		{"zh-CN", "目录"},
		{"zh-TW", "目录"},
		{"zh_CN.UTF-8", "目录"},
		{"fr-FR", "Contents"},
		{"C", "Contents"},
		{"not a locale", "Contents"},
	}
	for _, tt := range tests {
		if got := For(tt.locale).Contents; got != tt.want {
			t.Errorf("For(%q).Contents = %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "zh_CN.UTF-8")

	if got := Detect("").Contents; got != "目录" {
		t.Errorf("Detect from LANG = %q", got)
	}
	if got := Detect("en").Contents; got != "Contents" {
		t.Errorf("explicit locale should win, got %q", got)
	}

	t.Setenv("LANG", "")
	if got := Detect("").Contents; got != "Contents" {
		t.Errorf("Detect with no env = %q", got)
	}
}
