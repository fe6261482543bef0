package model

import "strings"

// TargetProfile describes the organization being monitored.
// It is supplied once via the configure endpoint (or a profile file)
// and drives query generation, search-string derivation, and the
// relevance pipeline.
//
// Only Name is required. The remaining fields sharpen generation and
// the deterministic fallback derivation when the text-generation
// capability is unavailable.
type TargetProfile struct {
	// Name is the organization name (e.g., "Acme Corporation").
	Name string `json:"company_name" yaml:"name"`

	// Description is free text about the organization.
	Description string `json:"description,omitempty" yaml:"description"`

	// PrimaryDomain is the main web domain (e.g., "acme.com").
	PrimaryDomain string `json:"primary_domain,omitempty" yaml:"primary_domain"`

	// AltDomains lists additional domains, comma-separated.
	AltDomains string `json:"alt_domains,omitempty" yaml:"alt_domains"`

	// EmailSuffix is the corporate email suffix (e.g., "@acme.com").
	EmailSuffix string `json:"email_suffix,omitempty" yaml:"email_suffix"`

	// Brands lists brand or product names, comma-separated.
	Brands string `json:"brands,omitempty" yaml:"brands"`

	// Industry is the organization's industry sector.
	Industry string `json:"industry,omitempty" yaml:"industry"`

	// Aliases lists known abbreviations or alternate names, comma-separated.
	Aliases string `json:"aliases,omitempty" yaml:"aliases"`

	// Country is the headquarters country.
	Country string `json:"country,omitempty" yaml:"country"`
}

// IsZero reports whether the profile carries no usable target identity.
func (p TargetProfile) IsZero() bool {
	return strings.TrimSpace(p.Name) == ""
}

// Domain returns the primary domain, deriving one from the name when
// no domain was configured. The derived form lowercases the name and
// strips spaces ("Acme Corp" -> "acmecorp.com"), matching how the
// fallback query derivation guesses at an organization's web presence.
func (p TargetProfile) Domain() string {
	if d := strings.TrimSpace(p.PrimaryDomain); d != "" {
		return d
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ""
	}
	if strings.Contains(name, ".") {
		return strings.ToLower(name)
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".com"
}

// SplitList splits a comma-separated profile field into trimmed,
// non-empty entries.
func SplitList(field string) []string {
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
