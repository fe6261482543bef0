package tor

import (
	"encoding/base32"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Length is the length of a v3 onion address without the ".onion"
	// suffix. V3 addresses are 56 characters of base32-encoded data.
	OnionV3Length = 56

	// OnionV3Version is the version byte for v3 onion addresses.
	OnionV3Version = 0x03

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"
)

// onionV3Pattern matches v3 onion addresses (56 base32 characters + .onion).
// Base32 uses lowercase a-z and digits 2-7.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// onionV3ContentPattern matches v3 addresses within larger text content.
var onionV3ContentPattern = regexp.MustCompile(`[a-z2-7]{56}\.onion`)

// checksumPrefix is the prefix used in v3 onion address checksum calculation.
// This is specified in the Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// ErrInvalidOnionAddress is returned when an address is not a valid v3 onion
// address.
var ErrInvalidOnionAddress = errors.New("invalid onion address")

// IsValidV3Address checks if the given address is a valid v3 onion address.
// It performs both format validation and checksum verification.
//
// Design decision: We perform full checksum validation rather than just
// pattern matching because:
// 1. It catches typos and corrupted addresses in scraped content
// 2. It matches what Tor itself does when connecting
//
// The address should include the ".onion" suffix.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)

	if !onionV3Pattern.MatchString(address) {
		return false
	}

	onionPart := strings.TrimSuffix(address, OnionSuffix)
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil {
		return false
	}

	// Decoded data is exactly 35 bytes:
	// 32 bytes ed25519 public key + 2 bytes checksum + 1 byte version.
	if len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]

	if version != OnionV3Version {
		return false
	}

	// Checksum = first 2 bytes of SHA3-256(".onion checksum" || pubkey || version)
	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum computes the checksum bytes for a v3 onion address.
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// ExtractV3Addresses finds all v3 onion addresses in the given text.
// Returns a deduplicated slice of addresses in first-seen order.
//
// Design decision: We deduplicate results because the same address often
// appears multiple times in page content (links, text, etc.). Returning
// unique addresses simplifies processing for callers.
func ExtractV3Addresses(content string) []string {
	content = strings.ToLower(content)
	matches := onionV3ContentPattern.FindAllString(content, -1)

	seen := make(map[string]bool)
	var result []string
	for _, match := range matches {
		if !seen[match] {
			seen[match] = true
			result = append(result, match)
		}
	}
	return result
}

// NormalizeAddress normalizes an onion address to lowercase with the .onion
// suffix. Returns the normalized address or an error if it is not a valid
// v3 address.
//
// This function handles common input variations: uppercase letters, a missing
// .onion suffix, extra whitespace, URL schemes, and trailing paths or query
// strings.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	address = strings.TrimPrefix(address, "https://")
	address = strings.TrimPrefix(address, "http://")

	if idx := strings.IndexAny(address, "/?#"); idx != -1 {
		address = address[:idx]
	}

	if !strings.HasSuffix(address, OnionSuffix) {
		address += OnionSuffix
	}

	if !IsValidV3Address(address) {
		return "", ErrInvalidOnionAddress
	}
	return address, nil
}
