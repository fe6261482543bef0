// Package config holds all tunables for the leakscan services and the
// loader for target-profile files.
package config
