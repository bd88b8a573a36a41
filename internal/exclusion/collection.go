package exclusion

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/matcher"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// Collection names a built-in bundle of exclude patterns, dynamic matchers
// and ignore file processors for a tool convention.
type Collection string

const (
	All                Collection = "ALL"
	Arch               Collection = "ARCH"
	Bazaar             Collection = "BAZAAR"
	BitKeeper          Collection = "BITKEEPER"
	CVS                Collection = "CVS"
	Darcs              Collection = "DARCS"
	Eclipse            Collection = "ECLIPSE"
	Git                Collection = "GIT"
	HiddenDir          Collection = "HIDDEN_DIR"
	HiddenFile         Collection = "HIDDEN_FILE"
	Idea               Collection = "IDEA"
	Mac                Collection = "MAC"
	Maven              Collection = "MAVEN"
	Mercurial          Collection = "MERCURIAL"
	Misc               Collection = "MISC"
	MKS                Collection = "MKS"
	RCS                Collection = "RCS"
	SCCS               Collection = "SCCS"
	SerenaDimensions10 Collection = "SERENA_DIMENSIONS_10"
	StandardPatterns   Collection = "STANDARD_PATTERNS"
	StandardSCMs       Collection = "STANDARD_SCMS"
	Subversion         Collection = "SUBVERSION"
	SurroundSCM        Collection = "SURROUND_SCM"
	VSS                Collection = "VSS"
)

// collectionDef is one row of the registry.
type collectionDef struct {
	desc      string
	patterns  []string
	supplier  func() *matcher.Matcher
	processor func() FileProcessor
	members   []Collection
}

var (
	hiddenDir = matcher.New("HIDDEN_DIR", func(n document.Name) bool {
		return n.IsHidden() && isDirectory.Matches(n)
	})
	hiddenFile = matcher.New("HIDDEN_FILE", func(n document.Name) bool {
		return n.IsHidden() && !isDirectory.Matches(n)
	})
)

var registry = map[Collection]collectionDef{
	All: {desc: "All of the standard excludes combined."},
	Arch: {
		desc:     "The files and directories created by an ARCH source code control based tool.",
		patterns: []string{"**/.arch-ids/**"},
	},
	Bazaar: {
		desc:      "The files and directories created by a Bazaar source code control based tool.",
		patterns:  []string{"**/.bzr/**", ".bzrignore"},
		processor: NewBazaarProcessor,
	},
	BitKeeper: {
		desc:     "The files and directories created by a Bitkeeper source code control based tool.",
		patterns: []string{"**/BitKeeper/**", "**/ChangeSet/**"},
	},
	CVS: {
		desc: "The files and directories created by a CVS source code control based tool.",
		patterns: []string{"**/.cvsignore",
			"**/RCS/**", "**/SCCS/**", "**/CVS/**", "**/CVS.adm/**",
			"**/RCSLOG/**", "**/cvslog.*", "**/tags/**", "**/TAGS/**",
			"**/.make.state", "**/.nse_depinfo",
			"**/*~", "**/#*", "**/.#*", "**/,*", "**/_$*", "**/*$", "**/*.old", "**/*.bak", "**/*.BAK",
			"**/*.orig", "**/*.rej", "**/.del-*",
			"**/*.a", "**/*.o", "**/*.obj", "**/*.so", "**/*.exe",
			"**/*.Z", "**/*.elc", "**/*.ln", "**/core"},
		processor: NewCVSProcessor,
	},
	Darcs: {
		desc:     "The files and directories created by a DARCS source code control based tool.",
		patterns: []string{"**/_darcs/**", "**/.darcsrepo/**", "**/-darcs-backup*", "**/.darcs-temp-mail"},
	},
	Eclipse: {
		desc:     "The files and directories created by an Eclipse IDE based tool.",
		patterns: []string{".checkstyle", ".classpath", ".factorypath", ".project", ".settings/**"},
	},
	Git: {
		desc:      "The files and directories created by GIT source code control to support GIT, also processes files listed in '.gitignore' and (unless LICAUDIT_NO_GIT_GLOBAL_IGNORE is specified) the global gitignore.",
		patterns:  []string{"**/.git/**", "**/.gitignore"},
		processor: NewGitProcessor,
	},
	HiddenDir: {
		desc:     "The hidden directories. Directories with names that start with '.'",
		supplier: func() *matcher.Matcher { return hiddenDir },
	},
	HiddenFile: {
		desc:     "The hidden files. Files with names that start with '.'",
		supplier: func() *matcher.Matcher { return hiddenFile },
	},
	Idea: {
		desc:     "The files and directories created by an IDEA IDE based tool.",
		patterns: []string{"*.iml", "*.ipr", "*.iws", ".idea/**"},
	},
	Mac: {
		desc:     "The .DS_Store files on Mac computers.",
		patterns: []string{"**/.DS_Store"},
	},
	Maven: {
		desc: "The files and directories created by Maven build system based project.",
		patterns: []string{"target/**", "cobertura.ser", "**/MANIFEST.MF", "release.properties",
			".repository", "build.log", ".mvn/**", "pom.xml.releaseBackup"},
	},
	Mercurial: {
		desc:      "The files and directories created by a Mercurial source code control based tool.",
		patterns:  []string{"**/.hg/**", ".hgignore"},
		processor: NewHgProcessor,
	},
	Misc: {
		desc:     "The set of miscellaneous files generally left by editors and the like.",
		patterns: []string{"**/*~", "**/#*#", "**/.#*", "**/%*%", "**/._*"},
	},
	MKS: {
		desc:     "The files and directories created by an MKS source code control based tool.",
		patterns: []string{"**/project.pj"},
	},
	RCS: {
		desc:     "The files and directories created by a RCS source code control based tool.",
		patterns: []string{"**/RCS/**"},
	},
	SCCS: {
		desc:     "The files and directories created by a SCCS source code control based tool.",
		patterns: []string{"**/SCCS/**"},
	},
	SerenaDimensions10: {
		desc:     "The files and directories created by a Serena Dimensions V10 change control system based tool.",
		patterns: []string{"**/.metadata/**"},
	},
	StandardPatterns: {
		desc: "A standard collection of generally accepted patterns to ignore.",
		members: []Collection{Misc, CVS, RCS, SCCS, VSS, MKS, Subversion, Arch, Bazaar, SurroundSCM, Mac,
			SerenaDimensions10, Mercurial, Git, BitKeeper, Darcs},
	},
	StandardSCMs: {
		desc:    "A standard collection of SCMs.",
		members: []Collection{Subversion, Git, Bazaar, Mercurial, CVS},
	},
	Subversion: {
		desc:     "The files and directories created by a Subversion source code control based tool.",
		patterns: []string{"**/.svn/**"},
	},
	SurroundSCM: {
		desc:     "The files and directories created by a Surround SCM source code control based tool.",
		patterns: []string{"**/.MySCMServerInfo"},
	},
	VSS: {
		desc:     "The files and directories created by a Visual Source Safe source code control based tool.",
		patterns: []string{"**/vssver.scc"},
	},
}

// Collections lists every collection by name.
func Collections() []Collection {
	out := lo.Keys(registry)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCollection looks up a collection by case-insensitive name. "SVN" is
// accepted for SUBVERSION.
func ParseCollection(s string) (Collection, error) {
	c := Collection(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case "SVN":
		c = Subversion
	}
	if _, ok := registry[c]; !ok {
		return "", scanerr.Configf("unknown standard collection %q", s)
	}
	return c, nil
}

// ParseCollections parses every name.
func ParseCollections(names []string) ([]Collection, error) {
	out := make([]Collection, 0, len(names))
	for _, n := range names {
		c, err := ParseCollection(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Description returns the human readable description.
func (c Collection) Description() string { return registry[c].desc }

// Expand resolves virtual unions into their concrete members.
func (c Collection) Expand() []Collection {
	switch def := registry[c]; {
	case c == All:
		return lo.Filter(Collections(), func(m Collection, _ int) bool { return len(registry[m].members) == 0 && m != All })
	case len(def.members) > 0:
		return def.members
	default:
		return []Collection{c}
	}
}

// Patterns returns the static patterns of c and its members.
func (c Collection) Patterns() []string {
	var out []string
	for _, m := range c.Expand() {
		out = append(out, registry[m].patterns...)
	}
	return lo.Uniq(out)
}

// Matcher returns the dynamic matchers of c and its members combined, or nil.
func (c Collection) Matcher() *matcher.Matcher {
	var ms []*matcher.Matcher
	for _, m := range c.Expand() {
		if s := registry[m].supplier; s != nil {
			ms = append(ms, s())
		}
	}
	if len(ms) == 0 {
		return nil
	}
	return matcher.Or(ms...)
}

// FileProcessors returns fresh processors for c and its members.
func (c Collection) FileProcessors() []FileProcessor {
	var out []FileProcessor
	for _, m := range c.Expand() {
		if p := registry[m].processor; p != nil {
			out = append(out, p())
		}
	}
	return out
}

// HasProcessor reports whether c or any member parses ignore files.
func (c Collection) HasProcessor() bool { return len(c.FileProcessors()) > 0 }

// HasStaticPatterns reports whether c or any member has static patterns.
func (c Collection) HasStaticPatterns() bool { return len(c.Patterns()) > 0 }
