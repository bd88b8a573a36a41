package exclusion

import (
	"strings"

	"github.com/bartekus/licaudit/internal/matcher"
	"github.com/bartekus/licaudit/internal/pattern"
)

const (
	bzrIgnoreFile = ".bzrignore"
	bzrRegex      = "RE:"
)

// NewBazaarProcessor reads .bzrignore files: `RE:` lines are regular
// expressions, everything else is a glob.
func NewBazaarProcessor() FileProcessor {
	return &descendingProcessor{
		fileName:    bzrIgnoreFile,
		filter:      CommentFilter("#"),
		selfExclude: true,
		newEntry:    func() entryFunc { return bzrEntry },
	}
}

func bzrEntry(_ *entryContext, entry string) []string {
	prefix := ""
	if strings.HasPrefix(entry, matcher.Negation) {
		prefix = matcher.Negation
		entry = entry[1:]
	}
	if strings.HasPrefix(entry, bzrRegex) {
		return []string{prefix + rootedRegex(entry[len(bzrRegex):])}
	}
	switch {
	case !pattern.IsRooted(entry, "/"):
		entry = pattern.DeepWildcard + "/" + entry
	case strings.HasPrefix(entry, "./"):
		entry = entry[2:]
	}
	return []string{prefix + entry}
}
