package exclusion

import (
	"regexp"
	"strings"

	"github.com/bartekus/licaudit/internal/pattern"
)

const hgIgnoreFile = ".hgignore"

var hgSyntax = regexp.MustCompile(`^\s?syntax:\s+(glob|regexp)\s?`)

// NewHgProcessor reads .hgignore files. Each file starts in regexp mode and
// `syntax:` lines switch mode for the rest of that file.
func NewHgProcessor() FileProcessor {
	return &descendingProcessor{
		fileName:    hgIgnoreFile,
		filter:      CommentFilter("#"),
		selfExclude: true,
		newEntry:    newHgEntry,
	}
}

func newHgEntry() entryFunc {
	glob := false
	return func(_ *entryContext, entry string) []string {
		if m := hgSyntax.FindStringSubmatch(strings.ToLower(entry)); m != nil {
			glob = m[1] == "glob"
			return nil
		}
		if glob {
			if strings.HasPrefix(entry, "*") {
				entry = pattern.DeepWildcard + "/" + entry
			}
			return []string{entry}
		}
		return []string{rootedRegex(entry)}
	}
}

// rootedRegex wraps a regex body. A leading `^` anchors it at the ignore
// file's directory; otherwise it may match at any depth.
func rootedRegex(body string) string {
	if strings.HasPrefix(body, "^") {
		return pattern.Regex(body[1:])
	}
	return pattern.Regex(".*" + body)
}
