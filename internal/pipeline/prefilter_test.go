package pipeline

import (
	"slices"
	"testing"
)

func TestPrefilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		text          string
		searchStrings []string
		want          []string
	}{
		{
			name:          "exact substring match",
			text:          "leaked database from acme.com servers",
			searchStrings: []string{"acme.com"},
			want:          []string{"acme.com"},
		},
		{
			name:          "case-insensitive match keeps original casing",
			text:          "contact admin@Company.COM for access",
			searchStrings: []string{"company.com"},
			want:          []string{"company.com"},
		},
		{
			name:          "uppercase search string matches lowercase text",
			text:          "fresh dump from acme corp insiders",
			searchStrings: []string{"Acme Corp"},
			want:          []string{"Acme Corp"},
		},
		{
			name:          "no match returns empty",
			text:          "unrelated marketplace listing",
			searchStrings: []string{"acme.com", "AcmePay"},
			want:          nil,
		},
		{
			name:          "matches preserve search-string order",
			text:          "AcmePay tokens and acme.com emails inside",
			searchStrings: []string{"acme.com", "AcmePay", "AcmeDrive"},
			want:          []string{"acme.com", "AcmePay"},
		},
		{
			name:          "empty search strings are skipped",
			text:          "anything at all",
			searchStrings: []string{"", "  "},
			want:          nil,
		},
		{
			name:          "nfc normalization aligns composed and decomposed forms",
			text:          "records for résumé holdings", // e + combining acute
			searchStrings: []string{"résumé"},              // precomposed é
			want:          []string{"résumé"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Prefilter(tt.text, tt.searchStrings)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Prefilter() = %v, want %v", got, tt.want)
			}
		})
	}
}
