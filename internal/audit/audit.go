// Package audit wires configuration, exclusion resolution, walking and
// analysis into a single scan.
package audit

import (
	"context"
	"time"

	log "github.com/charmbracelet/log"

	"github.com/bartekus/licaudit/internal/analysis"
	"github.com/bartekus/licaudit/internal/config"
	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/exclusion"
	"github.com/bartekus/licaudit/internal/header"
	"github.com/bartekus/licaudit/internal/license"
	"github.com/bartekus/licaudit/internal/matcher"
	"github.com/bartekus/licaudit/internal/report"
	"github.com/bartekus/licaudit/internal/walker"
)

// Auditor runs scans for one configuration.
type Auditor struct {
	cfg      *config.Config
	root     document.Name
	active   *matcher.Matcher
	analyser *analysis.Analyser
	pool     *license.Pool
	now      func() time.Time
}

// New resolves everything a scan needs up front so that configuration
// problems surface before any document is read.
func New(cfg *config.Config) (*Auditor, error) {
	root := document.Root(cfg.Root, document.DefaultFSInfo())

	active, err := ResolveExclusions(cfg, root)
	if err != nil {
		return nil, err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	worker, err := header.NewWorker(cfg.MaxRetainedLines, catalog.Approver())
	if err != nil {
		return nil, err
	}
	pool := catalog.NewPool()
	// Build one session eagerly so matcher errors are reported now.
	coll, err := pool.Get()
	if err != nil {
		return nil, err
	}
	pool.Put(coll)

	a, err := analysis.NewAnalyser(analysis.Options{
		Detector:         analysis.NewMimeDetector(TypeTable(cfg)),
		Pool:             pool,
		Worker:           worker,
		ArchiveRecursion: cfg.ArchiveRecursion,
	})
	if err != nil {
		return nil, err
	}
	return &Auditor{cfg: cfg, root: root, active: active, analyser: a, pool: pool, now: time.Now}, nil
}

// TypeTable is the default media type table with the configured text types
// added as STANDARD.
func TypeTable(cfg *config.Config) analysis.TypeTable {
	extra := make(map[string]document.Type, len(cfg.TextTypes))
	for _, mt := range cfg.TextTypes {
		extra[mt] = document.TypeStandard
	}
	return analysis.DefaultTypeTable().With(extra)
}

// ResolveExclusions builds the activity matcher for root.
func ResolveExclusions(cfg *config.Config, root document.Name) (*matcher.Matcher, error) {
	opts, err := cfg.ResolverOptions()
	if err != nil {
		return nil, err
	}
	return exclusion.NewResolver(opts).Resolve(root)
}

// Root returns the scanned root.
func (a *Auditor) Root() document.Name { return a.root }

// Active returns the resolved activity matcher.
func (a *Auditor) Active() *matcher.Matcher { return a.active }

// Run scans the tree and returns the collected results.
func (a *Auditor) Run(ctx context.Context) (*report.Scan, error) {
	scan := report.NewScan(a.cfg.Root, a.now())
	log.Info("Scanning", "root", a.cfg.Root, "archives", a.cfg.ArchiveRecursion)

	err := walker.New(a.root, a.active).Walk(ctx, func(doc document.Document) error {
		if err := a.analyser.Analyse(doc, scan.Add); err != nil {
			return err
		}
		scan.Add(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Scan complete",
		"documents", len(scan.Documents),
		"approved", scan.Summary.Approved,
		"unapproved", scan.Summary.Unapproved)
	log.Debug("License sessions", "idle", a.pool.Idle())
	return scan, nil
}
