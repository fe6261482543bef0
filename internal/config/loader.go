package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// LoadProfile reads a target profile from a YAML file.
//
// Example profile:
//
//	name: Acme Corporation
//	description: Payments provider headquartered in Berlin.
//	primary_domain: acme.com
//	alt_domains: acme.io, acme.de
//	email_suffix: "@acme.com"
//	brands: AcmePay, AcmeDrive
//	industry: fintech
//	aliases: ACME
//	country: Germany
//
// Loading a profile at startup replaces the initial configure call,
// which is useful for unattended deployments.
func LoadProfile(path string) (model.TargetProfile, error) {
	var profile model.TargetProfile

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return profile, ErrProfileNotFound
		}
		return profile, fmt.Errorf("failed to read profile file: %w", err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse profile file: %w", err)
	}

	if profile.IsZero() {
		return profile, ErrEmptyProfile
	}

	return profile, nil
}
