package exclusion

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	log "github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/env"
	"github.com/bartekus/licaudit/internal/matcher"
	"github.com/bartekus/licaudit/internal/pattern"
)

const gitIgnoreFile = ".gitignore"

// globalGitIgnoreLabel names the matchers built from the user-level file.
const globalGitIgnoreLabel = "global gitignore"

type gitProcessor struct {
	descendingProcessor
}

// NewGitProcessor reads .gitignore files and the global git ignore file.
func NewGitProcessor() FileProcessor {
	return &gitProcessor{descendingProcessor{
		fileName:    gitIgnoreFile,
		filter:      CommentFilter("#"),
		selfExclude: true,
		newEntry:    func() entryFunc { return gitEntry },
	}}
}

// Process adds the global ignore file below every directory level.
func (p *gitProcessor) Process(root document.Name) ([]matcher.Set, error) {
	sets, err := p.descendingProcessor.Process(root)
	if err != nil {
		return nil, err
	}

	path, ok := GlobalGitIgnore()
	if !ok {
		return sets, nil
	}
	lines, err := ReadLines(path, p.filter)
	if err != nil {
		return nil, err
	}
	log.Debug("Processing global git ignore", "file", path)

	// Entries in the global file are relative to the scanned root, so the
	// root stands in for the ignore file's location.
	b := matcher.NewBuilder()
	if err := p.processLines(root, root.Resolve(gitIgnoreFile), globalGitIgnoreLabel, lines, b); err != nil {
		return nil, err
	}
	if s := b.Build(); !s.IsEmpty() {
		sets = append(sets, s)
	}
	return sets, nil
}

// GlobalGitIgnore locates the user-level git ignore file. It honours
// XDG_CONFIG_HOME, falls back to HOME and is off when
// LICAUDIT_NO_GIT_GLOBAL_IGNORE is set.
func GlobalGitIgnore() (string, bool) {
	if env.NoGitGlobalIgnore.IsSet() {
		return "", false
	}
	xdg.Reload()
	configHome := xdg.ConfigHome
	if configHome == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", false
		}
		configHome = filepath.Join(home, ".config")
	}
	path := filepath.Join(configHome, "git", "ignore")
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// gitEntry applies .gitignore rules: `!` negates, `\#` and `\!` escape, a
// pattern without an inner slash matches at any depth, and a trailing slash
// restricts the match to directories.
func gitEntry(ctx *entryContext, entry string) []string {
	entry = trimTrailingSpace(entry)
	prefix := ""
	switch {
	case strings.HasPrefix(entry, matcher.Negation):
		prefix = matcher.Negation
		entry = entry[1:]
	case strings.HasPrefix(entry, `\#`), strings.HasPrefix(entry, `\!`):
		entry = entry[1:]
	}
	entry = unescapeGit(entry)
	if entry == "" || entry == "/" {
		return nil
	}

	dirOnly := strings.HasSuffix(entry, "/")
	switch {
	case !pattern.IsRooted(entry, "/"):
		entry = pattern.DeepWildcard + "/" + entry
	case strings.HasPrefix(entry, "/"):
		entry = entry[1:]
	}
	if prefix == "" && strings.HasPrefix(entry, matcher.Negation) {
		// a literal leading `!` must not read as a negation later
		entry = "/" + entry
	}

	if dirOnly {
		entry = strings.TrimSuffix(entry, "/")
		ctx.addDirectoryOnly(entry, prefix != "")
		return nil
	}
	return []string{prefix + entry}
}

// unescapeGit resolves backslash escapes before the entry is localized,
// since the pattern language reads `\` as a separator. Escaped glob
// metacharacters become single character classes; an escaped backslash has
// no equivalent and is dropped.
func unescapeGit(entry string) string {
	if !strings.Contains(entry, `\`) {
		return entry
	}
	var b strings.Builder
	for i := 0; i < len(entry); i++ {
		c := entry[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(entry) {
			break
		}
		i++
		switch next := entry[i]; next {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteByte(next)
			b.WriteByte(']')
		case '\\':
		default:
			b.WriteByte(next)
		}
	}
	return b.String()
}

// addDirectoryOnly registers a matcher for directories named by p together
// with everything below them. Files that merely share the name do not match.
func (c *entryContext) addDirectoryOnly(p string, include bool) {
	c.addMatcher(include, func(m *matcher.Matcher) *matcher.Matcher {
		return matcher.And(isDirectory, m)
	}, p, p)
	c.addMatcher(include, func(m *matcher.Matcher) *matcher.Matcher { return m },
		p+"/*/**", p+"/*/**")
}
