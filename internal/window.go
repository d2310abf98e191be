package internal

// PrepareWindow returns the slice of history handed to the model: the last
// windowSize entries when truncation is on, the full history otherwise. The
// input is never mutated; persisted history always holds every entry.
func PrepareWindow(entries []HistoryEntry, windowSize int, shouldTruncate bool) []HistoryEntry {
	if windowSize <= 0 || !shouldTruncate {
		return entries
	}
	if len(entries) <= windowSize {
		return entries
	}
	return entries[len(entries)-windowSize:]
}
