// SPDX-License-Identifier: AGPL-3.0-or-later

// Package walker traverses a directory tree and yields its documents.
package walker

import (
	"context"
	"io/fs"
	"os"

	log "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/env"
	"github.com/bartekus/licaudit/internal/matcher"
)

// Walker visits the documents below a root. A name the active matcher
// rejects is reported as an ignored document; rejected directories are not
// descended.
type Walker struct {
	root      document.Name
	active    *matcher.Matcher
	decompose bool
}

// New creates a walker for root. A nil matcher accepts everything.
func New(root document.Name, active *matcher.Matcher) *Walker {
	if active == nil {
		active = matcher.All
	}
	return &Walker{
		root:      root,
		active:    active,
		decompose: env.DecomposeOnUse.IsSet(),
	}
}

// Walk calls fn for every file below the root, depth first. Within a
// directory files come before subdirectories and both are sorted by name.
// Only listing errors, context cancellation and errors from fn abort.
func (w *Walker) Walk(ctx context.Context, fn func(document.Document) error) error {
	return w.walkDir(ctx, w.root, fn)
}

func (w *Walker) walkDir(ctx context.Context, dir document.Name, fn func(document.Document) error) error {
	entries, err := os.ReadDir(dir.Name())
	if err != nil {
		return errors.Wrapf(err, "listing %s", dir.Localized())
	}

	var dirs []document.Name
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := dir.Resolve(e.Name())
		if entryIsDir(name, e) {
			if e.Type()&fs.ModeSymlink != 0 {
				log.Debug("Not following symlinked directory", "document", name.Localized())
				continue
			}
			dirs = append(dirs, name)
			continue
		}

		var doc document.Document = document.NewFile(name, false)
		if !w.accept(name) {
			doc = document.NewIgnoredDocument(name, false)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}

	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !w.accept(d) {
			if err := fn(document.NewIgnoredDocument(d, true)); err != nil {
				return err
			}
			continue
		}
		if err := w.walkDir(ctx, d, fn); err != nil {
			return err
		}
	}
	return nil
}

func entryIsDir(name document.Name, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(name.Name())
	return err == nil && info.IsDir()
}

func (w *Walker) accept(name document.Name) bool {
	ok := w.active.Matches(name)
	if w.decompose {
		log.Debug("Exclusion decision", "document", name.Localized(), "active", ok,
			"trace", matcher.Decompose(w.active, name).String())
	}
	return ok
}
