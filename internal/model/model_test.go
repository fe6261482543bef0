package model

import "testing"

// TestFetchOutcomeString verifies the closed-enum labels.
func TestFetchOutcomeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome FetchOutcome
		want    string
	}{
		{OutcomeRawContent, "raw_content"},
		{OutcomeDeadLink, "dead_link"},
		{OutcomeTimeout, "timeout"},
		{OutcomeConnectionError, "connection_error"},
		{OutcomeProtocolError, "protocol_error"},
		{OutcomeUnknown, "unknown"},
		{FetchOutcome(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("FetchOutcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

// TestFetchOutcomeOK verifies only RawContent counts as usable.
func TestFetchOutcomeOK(t *testing.T) {
	t.Parallel()

	if !OutcomeRawContent.OK() {
		t.Error("OutcomeRawContent should be OK")
	}
	for _, o := range []FetchOutcome{OutcomeDeadLink, OutcomeTimeout, OutcomeConnectionError, OutcomeProtocolError, OutcomeUnknown} {
		if o.OK() {
			t.Errorf("%s should not be OK", o)
		}
	}
}

// TestTargetProfileDomain tests domain derivation from the profile.
func TestTargetProfileDomain(t *testing.T) {
	t.Parallel()

	t.Run("explicit primary domain wins", func(t *testing.T) {
		t.Parallel()

		p := TargetProfile{Name: "Acme Corp", PrimaryDomain: "acme.io"}
		if got := p.Domain(); got != "acme.io" {
			t.Errorf("Domain() = %q, want %q", got, "acme.io")
		}
	})

	t.Run("derived from name", func(t *testing.T) {
		t.Parallel()

		p := TargetProfile{Name: "Acme Corp"}
		if got := p.Domain(); got != "acmecorp.com" {
			t.Errorf("Domain() = %q, want %q", got, "acmecorp.com")
		}
	})

	t.Run("name already a domain", func(t *testing.T) {
		t.Parallel()

		p := TargetProfile{Name: "Acme.com"}
		if got := p.Domain(); got != "acme.com" {
			t.Errorf("Domain() = %q, want %q", got, "acme.com")
		}
	})

	t.Run("empty profile", func(t *testing.T) {
		t.Parallel()

		p := TargetProfile{}
		if !p.IsZero() {
			t.Error("empty profile should be zero")
		}
		if got := p.Domain(); got != "" {
			t.Errorf("Domain() = %q, want empty", got)
		}
	})
}

// TestSplitList tests comma-separated profile field splitting.
func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"spaces and empties", " a , ,b ,", []string{"a", "b"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SplitList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitList(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestIrrelevantVerdict verifies the minimal-verdict invariants.
func TestIrrelevantVerdict(t *testing.T) {
	t.Parallel()

	v := IrrelevantVerdict("http://example.onion", "en")

	if v.IsRelevant {
		t.Error("minimal verdict must be irrelevant")
	}
	if v.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0", v.Confidence)
	}
	if v.SimilarityScore != 0.0 {
		t.Errorf("SimilarityScore = %v, want 0", v.SimilarityScore)
	}
	if v.Summary != "" {
		t.Errorf("Summary = %q, want empty", v.Summary)
	}
	if v.MatchedStrings == nil || len(v.MatchedStrings) != 0 {
		t.Errorf("MatchedStrings = %v, want empty non-nil", v.MatchedStrings)
	}
	if v.ClassificationLabel != "irrelevant" {
		t.Errorf("ClassificationLabel = %q, want irrelevant", v.ClassificationLabel)
	}
}
