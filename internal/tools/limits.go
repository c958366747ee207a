package tools

const (
	// truncatedMarker is appended to any tool output cut at a budget.
	truncatedMarker = "<truncated>"

	// readCharLimit is the maximum size of a read_file result.
	readCharLimit = 5000

	// lineCharLimit is the longest line find_text_in_files will echo back;
	// longer lines are redacted to keep result size bounded.
	lineCharLimit = 1000

	// grepWorkers bounds the file-scanning pool inside find_text_in_files.
	grepWorkers = 8
)

// truncateRunes cuts s to at most limit runes, reporting whether anything
// was cut. The limits above are character budgets, so the cut never lands
// inside a multi-byte rune.
func truncateRunes(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i], true
		}
		count++
	}
	return s, false
}
