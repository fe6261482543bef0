package crawler

import (
	"math/rand/v2"
	"net/http"
)

// browserProfiles are complete browser fingerprint header sets. A random
// profile is applied to every outgoing request so the crawler's traffic
// does not present a single stable fingerprint across circuits.
//
// Each profile is internally consistent (matching User-Agent, Accept, and
// client-hint headers) because mismatched combinations are themselves a
// fingerprint.
var browserProfiles = []map[string]string{
	{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Accept-Encoding":           "gzip, deflate",
		"Sec-Ch-Ua":                 `"Chromium";v="135", "Google Chrome";v="135", "Not-A.Brand";v="99"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"Windows"`,
		"Upgrade-Insecure-Requests": "1",
	},
	{
		"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Accept-Encoding":           "gzip, deflate",
		"Sec-Ch-Ua":                 `"Chromium";v="135", "Google Chrome";v="135", "Not-A.Brand";v="99"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"macOS"`,
		"Upgrade-Insecure-Requests": "1",
	},
	{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:137.0) Gecko/20100101 Firefox/137.0",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Accept-Encoding":           "gzip, deflate",
		"Upgrade-Insecure-Requests": "1",
	},
	{
		"User-Agent":                "Mozilla/5.0 (X11; Linux x86_64; rv:137.0) Gecko/20100101 Firefox/137.0",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Accept-Encoding":           "gzip, deflate",
		"Upgrade-Insecure-Requests": "1",
	},
}

// applyBrowserHeaders sets a random fingerprint profile on the request.
func applyBrowserHeaders(req *http.Request) {
	profile := browserProfiles[rand.IntN(len(browserProfiles))]
	for key, value := range profile {
		req.Header.Set(key, value)
	}
}
