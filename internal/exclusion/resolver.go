package exclusion

import (
	"fmt"

	log "github.com/charmbracelet/log"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/matcher"
)

// ResolverOptions collects every source of include and exclude rules.
type ResolverOptions struct {
	// Includes are patterns that carve exceptions out of the excludes.
	Includes []string
	// Excludes are patterns to exclude; `!` entries are treated as includes.
	Excludes []string

	IncludedCollections      []Collection
	ExcludedCollections      []Collection
	FileProcessorCollections []Collection

	IncludedMatchers []*matcher.Matcher
	ExcludedMatchers []*matcher.Matcher
}

// Resolver composes ResolverOptions into a single activity matcher.
type Resolver struct {
	opts ResolverOptions
}

// NewResolver returns a resolver for opts.
func NewResolver(opts ResolverOptions) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve builds the matcher that reports whether a name under base is
// active. Includes carve exceptions out of the excludes and never act as an
// allow-list.
func (r *Resolver) Resolve(base document.Name) (*matcher.Matcher, error) {
	var sets []matcher.Set

	processed, err := r.processFiles(base)
	if err != nil {
		return nil, err
	}
	sets = append(sets, processed...)

	b := matcher.NewBuilder()
	if err := r.addPatterns(b, base); err != nil {
		return nil, err
	}
	r.addMatchers(b)
	sets = append(sets, b.Build())

	result := matcher.Merge(sets...).Matcher()
	log.Debug("Resolved exclusions", "base", base.Name(), "matcher", result.Name())
	return result, nil
}

func (r *Resolver) processFiles(base document.Name) ([]matcher.Set, error) {
	seen := map[string]bool{}
	var sets []matcher.Set
	for _, c := range r.opts.FileProcessorCollections {
		for _, p := range c.FileProcessors() {
			if seen[p.FileName()] {
				continue
			}
			seen[p.FileName()] = true

			levels, err := p.Process(base)
			if err != nil {
				return nil, err
			}
			s := matcher.Levels(fmt.Sprintf("levels(%s)", p.FileName()), levels)
			if s.IsEmpty() {
				continue
			}
			log.Info("Processing exclude file", "collection", c, "file", p.FileName(), "levels", len(levels))
			sets = append(sets, s)
		}
	}
	return sets, nil
}

func (r *Resolver) addPatterns(b *matcher.Builder, base document.Name) error {
	excl, incl := matcher.Segregate(r.opts.Excludes)
	incl = append(incl, r.opts.Includes...)
	if err := b.AddIncluded("patterns", base, localizeAll(base, incl)); err != nil {
		return err
	}
	if err := b.AddExcluded("patterns", base, localizeAll(base, excl)); err != nil {
		return err
	}

	for _, c := range r.opts.ExcludedCollections {
		patterns := c.Patterns()
		if len(patterns) > 0 {
			log.Info("Excluding collection", "collection", c, "patterns", len(patterns))
		}
		if err := b.AddExcluded(string(c), base, localizeAll(base, patterns)); err != nil {
			return err
		}
	}
	for _, c := range r.opts.IncludedCollections {
		patterns := c.Patterns()
		if len(patterns) > 0 {
			log.Info("Including collection", "collection", c, "patterns", len(patterns))
		}
		if err := b.AddIncluded(string(c), base, localizeAll(base, patterns)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) addMatchers(b *matcher.Builder) {
	for _, c := range r.opts.ExcludedCollections {
		if m := c.Matcher(); m != nil {
			log.Info("Excluding collection matcher", "collection", c, "matcher", m.Name())
			b.AddExcludedMatcher(m)
		}
	}
	for _, c := range r.opts.IncludedCollections {
		if m := c.Matcher(); m != nil {
			log.Info("Including collection matcher", "collection", c, "matcher", m.Name())
			b.AddIncludedMatcher(m)
		}
	}
	for _, m := range r.opts.ExcludedMatchers {
		b.AddExcludedMatcher(m)
	}
	for _, m := range r.opts.IncludedMatchers {
		b.AddIncludedMatcher(m)
	}
}

func localizeAll(base document.Name, patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = LocalizePattern(base, p)
	}
	return out
}
