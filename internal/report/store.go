package report

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ErrCorruptScan marks a stored scan that exists but cannot be used.
var ErrCorruptScan = errors.New("stored scan is corrupt")

// LastScanFile is the file name of the stored scan inside the state directory.
const LastScanFile = "last-scan.json"

// Store persists the last scan under a state directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, usually <root>/.licaudit.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path is the location of the stored scan.
func (s *Store) Path() string {
	return filepath.Join(s.dir, LastScanFile)
}

// ReadLast loads the stored scan. Nothing stored yields a nil scan and no
// error; an undecodable file or one without a root is ErrCorruptScan.
func (s *Store) ReadLast() (*Scan, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.Path())
	}

	var scan Scan
	if err := json.Unmarshal(data, &scan); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decoding %s", s.Path()), ErrCorruptScan)
	}
	if scan.Root == "" {
		return nil, errors.Mark(errors.Newf("%s names no scan root", s.Path()), ErrCorruptScan)
	}
	return &scan, nil
}

// WriteLast replaces the stored scan.
func (s *Store) WriteLast(scan *Scan) error {
	data, err := json.MarshalIndent(scan, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding scan")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating state directory %s", s.dir)
	}
	return writeAtomic(s.Path(), append(data, '\n'))
}

// Reset forgets the stored scan. The state directory itself is kept.
func (s *Store) Reset() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "removing %s", s.Path())
	}
	return nil
}

// writeAtomic replaces path so readers never observe a partial scan. The
// temp file lives next to path so the rename stays on one file system.
func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "staging scan")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "syncing %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "setting mode on %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replacing %s", path)
}
