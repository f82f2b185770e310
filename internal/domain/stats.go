package domain

// ScanStats counts what an archive scan saw.
type ScanStats struct {
	Envelopes int // Well-formed envelopes decoded
	Tweets    int // Tweets extracted
	Skipped   int // Malformed envelopes and undecodable payloads
	Empties   int // Profile entries with no embedded status
}

// Add merges another scan's counters into this one.
func (s *ScanStats) Add(other ScanStats) {
	s.Envelopes += other.Envelopes
	s.Tweets += other.Tweets
	s.Skipped += other.Skipped
	s.Empties += other.Empties
}
