package report

// shortLabel abbreviates long store ids (the dataset uses UUIDs) so
// chart axis labels stay readable.
func shortLabel(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
