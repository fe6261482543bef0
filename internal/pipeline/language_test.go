package pipeline

import "testing"

func TestLanguageDetector(t *testing.T) {
	t.Parallel()

	detector := NewLanguageDetector()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english text",
			text: "This is a complete English sentence about leaked customer databases and stolen credentials.",
			want: "en",
		},
		{
			name: "russian text",
			text: "Продажа баз данных и учетных записей пользователей на подпольном форуме.",
			want: "ru",
		},
		{
			name: "empty text",
			text: "",
			want: "unknown",
		},
		{
			name: "whitespace only",
			text: "   \n\t ",
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := detector.Detect(tt.text); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	// Multi-byte characters must not be split mid-rune.
	s := "ééééé"
	got := truncateRunes(s, 3)
	if got != "ééé" {
		t.Errorf("truncateRunes() = %q, want %q", got, "ééé")
	}

	if got := truncateRunes("short", 100); got != "short" {
		t.Errorf("truncateRunes() = %q, want unchanged input", got)
	}
}
