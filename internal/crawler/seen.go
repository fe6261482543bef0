package crawler

import "sync"

// SeenSet tracks which normalized URLs have already been scheduled for
// fetching during this run. Checking and marking are one atomic step, so
// two concurrent discovery cycles can never both claim the same URL.
type SeenSet struct {
	mu   sync.Mutex
	urls map[string]bool
}

// NewSeenSet creates a SeenSet, optionally warm-loaded with URLs already
// seen in previous runs (e.g. from the persistent store).
func NewSeenSet(warm []string) *SeenSet {
	urls := make(map[string]bool, len(warm))
	for _, u := range warm {
		urls[NormalizeURL(u)] = true
	}
	return &SeenSet{urls: urls}
}

// FilterAndMark returns the subset of urls not seen before, normalized,
// and marks them seen. Order is preserved; duplicates within the input
// collapse to their first occurrence.
func (s *SeenSet) FilterAndMark(urls []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]string, 0, len(urls))
	for _, u := range urls {
		normalized := NormalizeURL(u)
		if normalized == "" || s.urls[normalized] {
			continue
		}
		s.urls[normalized] = true
		fresh = append(fresh, normalized)
	}
	return fresh
}

// Len returns the number of URLs marked seen.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}
