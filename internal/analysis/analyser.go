package analysis

import (
	log "github.com/charmbracelet/log"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/header"
	"github.com/bartekus/licaudit/internal/license"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// Options configures an Analyser.
type Options struct {
	Detector ContentTypeDetector
	Pool     *license.Pool
	Worker   *header.Worker
	Archives *ArchiveWalker
	// ArchiveRecursion analyses the members of archives.
	ArchiveRecursion bool
}

// Analyser classifies documents and records their license claims.
type Analyser struct {
	detector ContentTypeDetector
	pool     *license.Pool
	worker   *header.Worker
	archives *ArchiveWalker
	recurse  bool
}

// NewAnalyser validates opts. A missing pool or worker is a configuration
// error; a missing detector or archive walker falls back to the default.
func NewAnalyser(opts Options) (*Analyser, error) {
	if opts.Pool == nil {
		return nil, scanerr.Configf("analyser requires a license pool")
	}
	if opts.Worker == nil {
		return nil, scanerr.Configf("analyser requires a header worker")
	}
	if opts.Detector == nil {
		opts.Detector = NewMimeDetector(DefaultTypeTable())
	}
	if opts.Archives == nil {
		opts.Archives = NewArchiveWalker()
	}
	return &Analyser{
		detector: opts.Detector,
		pool:     opts.Pool,
		worker:   opts.Worker,
		archives: opts.Archives,
		recurse:  opts.ArchiveRecursion,
	}, nil
}

// Analyse fills in doc's metadata. Analysed archive members are passed to
// nested when it is not nil. Only configuration errors are returned;
// per-document failures are recorded on the document.
func (a *Analyser) Analyse(doc document.Document, nested func(document.Document)) error {
	meta := doc.MetaData()
	if doc.IsDirectory() || meta.Type() == document.TypeIgnored {
		return nil
	}

	if err := a.classify(doc); err != nil {
		recordFailure(doc, err)
		return nil
	}

	switch meta.Type() {
	case document.TypeStandard:
		if IsNotice(doc.Name()) {
			meta.SetType(document.TypeNotice)
			return nil
		}
		return a.checkHeader(doc)
	case document.TypeArchive:
		if a.recurse {
			return a.walkArchive(doc, nested)
		}
	}
	return nil
}

func (a *Analyser) classify(doc document.Document) error {
	r, err := doc.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	mediaType, t, err := a.detector.Detect(r, doc.Name())
	if err != nil {
		return err
	}
	meta := doc.MetaData()
	meta.SetMediaType(mediaType)
	meta.SetType(t)
	return nil
}

func (a *Analyser) checkHeader(doc document.Document) error {
	coll, err := a.pool.Get()
	if err != nil {
		return err
	}
	defer a.pool.Put(coll)

	if a.worker.Check(doc, coll) != header.Matched {
		return nil
	}
	for _, claim := range doc.MetaData().Licenses() {
		if claim.FamilyCategory == license.GeneratedFamily.ID() {
			doc.MetaData().SetType(document.TypeIgnored)
			break
		}
	}
	return nil
}

func (a *Analyser) walkArchive(doc document.Document, nested func(document.Document)) error {
	var fatal error
	err := a.archives.Walk(doc, func(entry document.Document) error {
		if err := a.Analyse(entry, nested); err != nil {
			fatal = err
			return err
		}
		if nested != nil {
			nested(entry)
		}
		return nil
	})
	if fatal != nil {
		return fatal
	}
	if err != nil {
		doc.MetaData().SetErr(err)
		log.Warn("archive not analysed", "document", doc.Name().Localized(), "err", err)
	}
	return nil
}

func recordFailure(doc document.Document, err error) {
	err = scanerr.Document(err, doc.Name().Localized())
	meta := doc.MetaData()
	meta.SetType(document.TypeUnknown)
	meta.SetErr(err)
	log.Warn("document not analysed", "document", doc.Name().Localized(), "err", err)
}
