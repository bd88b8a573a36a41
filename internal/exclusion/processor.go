package exclusion

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	log "github.com/charmbracelet/log"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/matcher"
	"github.com/bartekus/licaudit/internal/pattern"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// FileProcessor turns the ignore files found below a root into one Set per
// directory depth, deepest first.
type FileProcessor interface {
	FileName() string
	Process(root document.Name) ([]matcher.Set, error)
}

// entryFunc rewrites one retained line of an ignore file into zero or more
// patterns relative to the ignore file's directory. It may instead register
// matchers on the context directly.
type entryFunc func(ctx *entryContext, entry string) []string

// entryContext is the per-file state offered to an entryFunc.
type entryContext struct {
	root       document.Name
	ignoreFile document.Name
	dir        document.Name
	builder    *matcher.Builder
	err        error
}

// addMatcher registers a named matcher over localized patterns as an include
// or an exclude of the current level.
func (c *entryContext) addMatcher(include bool, build func(*matcher.Matcher) *matcher.Matcher, name string, patterns ...string) {
	if c.err != nil {
		return
	}
	localized := make([]string, len(patterns))
	for i, p := range patterns {
		localized[i] = LocalizePattern(c.dir, p)
	}
	set, err := pattern.NewSet(localized, c.root.Separator())
	if err != nil {
		c.err = err
		return
	}
	m := build(matcher.FromPatterns(name, set, c.root))
	if include {
		c.builder.AddIncludedMatcher(m)
	} else {
		c.builder.AddExcludedMatcher(m)
	}
}

// descendingProcessor searches every directory below the root for fileName.
// A literal processor has no negation syntax and every entry is an exclude.
type descendingProcessor struct {
	fileName    string
	filter      LineFilter
	selfExclude bool
	literal     bool
	newEntry    func() entryFunc
}

func (p *descendingProcessor) FileName() string { return p.fileName }

// Process walks root and returns one Set per level, deepest first.
func (p *descendingProcessor) Process(root document.Name) ([]matcher.Set, error) {
	levels := map[int]*matcher.Builder{}
	level := func(n int) *matcher.Builder {
		if levels[n] == nil {
			levels[n] = matcher.NewBuilder()
		}
		return levels[n]
	}

	if p.selfExclude {
		self := pattern.DeepWildcard + "/" + p.fileName
		set, err := pattern.NewSet([]string{LocalizePattern(root, self)}, root.Separator())
		if err != nil {
			return nil, err
		}
		level(0).AddExcludedMatcher(matcher.FromPatterns(self, set, root))
	}

	err := filepath.WalkDir(root.Name(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != p.fileName {
			return nil
		}
		ignoreFile := document.NewName(path, root.BaseName(), root.FSInfo())
		depth := len(root.Tokenize(ignoreFile.Dir().Name())) - len(root.Tokenize(root.Name()))
		log.Debug("Processing ignore file", "file", ignoreFile.Localized(), "level", depth)
		return p.processFile(root, ignoreFile, level(depth))
	})
	if err != nil {
		if scanerr.IsConfiguration(err) {
			return nil, err
		}
		return nil, scanerr.Config(err, "searching for "+p.fileName)
	}

	return sortLevels(levels), nil
}

func (p *descendingProcessor) processFile(root, ignoreFile document.Name, b *matcher.Builder) error {
	lines, err := ReadLines(ignoreFile.Name(), p.filter)
	if err != nil {
		return err
	}
	return p.processLines(root, ignoreFile, matcher.Label(ignoreFile), lines, b)
}

func (p *descendingProcessor) processLines(root, ignoreFile document.Name, label string, lines []string, b *matcher.Builder) error {
	ctx := &entryContext{root: root, ignoreFile: ignoreFile, dir: ignoreFile.Dir(), builder: b}
	entry := p.newEntry()
	var patterns []string
	for _, line := range lines {
		for _, e := range entry(ctx, line) {
			if p.literal {
				patterns = append(patterns, anchorPattern(ctx.dir, e))
			} else {
				patterns = append(patterns, LocalizePattern(ctx.dir, e))
			}
		}
		if ctx.err != nil {
			return ctx.err
		}
	}
	if p.literal {
		return b.AddExcluded(label, root, patterns)
	}
	return b.AddPatterns(label, root, patterns)
}

// sortLevels builds each level, deepest first.
func sortLevels(levels map[int]*matcher.Builder) []matcher.Set {
	keys := make([]int, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	sets := make([]matcher.Set, 0, len(keys))
	for _, k := range keys {
		if s := levels[k].Build(); !s.IsEmpty() {
			sets = append(sets, s)
		}
	}
	return sets
}

// LocalizePattern anchors p at dir. A leading `!` is kept. Regex bodies are
// prefixed with the quoted directory; globs with the directory itself.
func LocalizePattern(dir document.Name, p string) string {
	prefix := ""
	if strings.HasPrefix(p, matcher.Negation) {
		prefix = matcher.Negation
		p = p[len(matcher.Negation):]
	}
	return prefix + anchorPattern(dir, p)
}

// anchorPattern prefixes p with dir without looking for a negation.
func anchorPattern(dir document.Name, p string) string {
	sep := dir.Separator()
	anchor := strings.TrimSuffix(dir.Name(), sep) + sep
	body := pattern.Extract(p, sep)
	if pattern.IsRegex(p) {
		return pattern.Regex(regexp.QuoteMeta(anchor) + body)
	}
	return anchor + strings.TrimPrefix(body, sep)
}

func statIsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// isDirectory is shared so composites built from it deduplicate.
var isDirectory = matcher.IsDirectory(statIsDir)
