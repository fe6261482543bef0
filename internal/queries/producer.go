package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pramath6095/dark-web-leak-ai/internal/llm"
	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// Producer default settings.
const (
	defaultInitialCount      = 20
	defaultMultilingualCount = 4
	defaultSearchStringsMin  = 30
	defaultSearchStringsMax  = 60
)

// Producer derives search queries and matching strings from a target
// profile through a text-generation backend.
type Producer struct {
	// gen is the text-generation backend.
	gen llm.TextGenerator

	// initialCount is the number of queries requested per generation round.
	initialCount int

	// multilingualCount is the minimum number of non-English queries
	// requested in follow-up rounds.
	multilingualCount int

	// stringsMin and stringsMax bound the requested search-string count.
	stringsMin int
	stringsMax int

	// logger records generation activity.
	logger *slog.Logger
}

// ProducerOption configures a Producer.
type ProducerOption func(*Producer)

// WithInitialCount sets the number of queries requested per round.
func WithInitialCount(count int) ProducerOption {
	return func(p *Producer) {
		p.initialCount = count
	}
}

// WithProducerLogger sets the logger used for generation activity.
func WithProducerLogger(logger *slog.Logger) ProducerOption {
	return func(p *Producer) {
		p.logger = logger
	}
}

// NewProducer creates a Producer backed by the given text generator.
func NewProducer(gen llm.TextGenerator, opts ...ProducerOption) *Producer {
	p := &Producer{
		gen:               gen,
		initialCount:      defaultInitialCount,
		multilingualCount: defaultMultilingualCount,
		stringsMin:        defaultSearchStringsMin,
		stringsMax:        defaultSearchStringsMax,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InitialQueries generates the first round of search queries for a profile.
func (p *Producer) InitialQueries(ctx context.Context, profile model.TargetProfile) ([]string, error) {
	raw, err := p.gen.Generate(ctx, initialPrompt(profile, p.initialCount))
	if err != nil {
		return nil, fmt.Errorf("initial query generation failed: %w", err)
	}
	return llm.ParseStringArray(raw), nil
}

// MoreQueries generates a follow-up round of queries, passing the full list
// of already generated queries so the backend avoids repeating them.
func (p *Producer) MoreQueries(ctx context.Context, profile model.TargetProfile, used []string) ([]string, error) {
	raw, err := p.gen.Generate(ctx, morePrompt(profile, used, p.initialCount, p.multilingualCount))
	if err != nil {
		return nil, fmt.Errorf("follow-up query generation failed: %w", err)
	}
	return llm.ParseStringArray(raw), nil
}

// SearchStrings generates matching strings for the relevance pipeline.
// The deterministic basics derived from the profile are always prepended,
// so the result is usable even when the model returns a weak list.
func (p *Producer) SearchStrings(ctx context.Context, profile model.TargetProfile) ([]string, error) {
	basics := DeriveBasicStrings(profile)

	raw, err := p.gen.Generate(ctx, searchStringsPrompt(profile, p.stringsMin, p.stringsMax))
	if err != nil {
		return basics, fmt.Errorf("search string generation failed: %w", err)
	}

	generated := llm.ParseStringArray(raw)
	seen := make(map[string]bool, len(basics))
	for _, s := range basics {
		seen[s] = true
	}
	result := basics
	for _, s := range generated {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result, nil
}

// FallbackQueries derives deterministic search queries from the profile
// without the generation backend. Used when the backend is unreachable so
// monitoring still proceeds with basic coverage.
func FallbackQueries(profile model.TargetProfile) []string {
	name := profile.Name
	domain := profile.Domain()

	queries := []string{
		name + " data breach",
		name + " leaked database",
		name + " credentials leak",
		name + " data dump",
		name + " hacked",
		name + " password leak",
		name + " internal documents",
		name + " employee data",
		name + " customer data leak",
		name + " database dump dark web",
		domain + " data breach",
		"@" + domain + " leaked credentials",
	}

	altDomains := model.SplitList(profile.AltDomains)
	if len(altDomains) > 3 {
		altDomains = altDomains[:3]
	}
	for _, d := range altDomains {
		queries = append(queries, d+" data breach", "@"+d+" leaked credentials")
	}

	brands := model.SplitList(profile.Brands)
	if len(brands) > 3 {
		brands = brands[:3]
	}
	for _, b := range brands {
		queries = append(queries, b+" data leak")
	}

	return queries
}

// DeriveBasicStrings derives obvious matching strings from the profile
// without the generation backend: the organization name, domain and email
// forms, brands, and aliases.
func DeriveBasicStrings(profile model.TargetProfile) []string {
	if profile.IsZero() {
		return nil
	}

	strs := []string{profile.Name}
	if domain := profile.Domain(); domain != "" {
		strs = append(strs, domain, "@"+domain)
	}

	seen := make(map[string]bool, len(strs))
	for _, s := range strs {
		seen[s] = true
	}
	appendUnique := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			strs = append(strs, s)
		}
	}

	appendUnique(profile.EmailSuffix)
	for _, b := range model.SplitList(profile.Brands) {
		appendUnique(b)
	}
	for _, a := range model.SplitList(profile.Aliases) {
		appendUnique(a)
	}
	return strs
}
