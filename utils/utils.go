package utils

import "strings"

// EOL is a line terminator style.
type EOL string

const (
	EOLLF   EOL = "\n"
	EOLCRLF EOL = "\r\n"
	EOLCR   EOL = "\r"
)

// DetectEOL returns the first line terminator found in content, LF when
// there is none.
func DetectEOL(content string) EOL {
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			return EOLLF
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				return EOLCRLF
			}
			return EOLCR
		}
	}
	return EOLLF
}

// SplitLines splits content into lines, accepting LF, CRLF and lone CR
// terminators. A trailing terminator does not start an extra line, so
// "a\n" and "a" both yield ["a"]. Empty content yields no lines.
func SplitLines(content string) []string {
	if content == "" {
		return []string{}
	}

	lines := make([]string, 0, strings.Count(content, "\n")+1)
	start := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			lines = append(lines, content[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, content[start:i])
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

// JoinLines joins lines with eol and terminates the last line.
func JoinLines(lines []string, eol EOL) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, string(eol)) + string(eol)
}

// CountChangedLines sums the line counts of both sides of each hunk.
func CountChangedLines[T interface{ Len() int }](deleted, added []T) (deletions, additions int) {
	for _, r := range deleted {
		deletions += r.Len()
	}
	for _, r := range added {
		additions += r.Len()
	}
	return deletions, additions
}
