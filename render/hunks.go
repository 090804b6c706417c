package render

// documentLines treats a single empty line as an empty document.
func documentLines(lines []string) []string {
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}
