package exclusion

import (
	"bufio"
	"os"
	"strings"

	"github.com/bartekus/licaudit/internal/scanerr"
)

// CommentPrefixes are the prefixes recognised by the generic processor.
var CommentPrefixes = []string{"#", "##", "//", "/**", "/*"}

// LineFilter reports whether a line should be kept.
type LineFilter func(line string) bool

// NotBlank keeps every line with non-space content.
func NotBlank(line string) bool {
	return strings.TrimSpace(line) != ""
}

// CommentFilter drops blank lines and lines whose left-trimmed text starts
// with any prefix. With no prefixes it only drops blank lines.
func CommentFilter(prefixes ...string) LineFilter {
	return func(line string) bool {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || strings.TrimSpace(trimmed) == "" {
			return false
		}
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				return false
			}
		}
		return true
	}
}

// ReadLines reads path once and returns the lines keep accepts. A missing or
// unreadable file is a configuration error.
func ReadLines(path string, keep LineFilter) (lines []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scanerr.Config(err, "reading ignore file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = scanerr.Config(cerr, "closing ignore file")
		}
	}()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if keep == nil || keep(line) {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, scanerr.Config(err, "reading ignore file")
	}
	return lines, nil
}

// trimTrailingSpace removes trailing blanks unless the last one is escaped.
func trimTrailingSpace(s string) string {
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		if len(s) >= 2 && s[len(s)-2] == '\\' {
			return s[:len(s)-2] + s[len(s)-1:]
		}
		s = s[:len(s)-1]
	}
	return s
}
