// Package sources loads raw statement documents from the local filesystem,
// ZIP archives, in-memory buffers and S3-compatible object storage.
//
// Limits are enforced here, before any parsing: a batch larger than
// MaxFiles is rejected outright, while oversized or unreadable entries are
// reported as failures and the rest of the batch is kept.
package sources

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/domain"
)

var (
	// ErrTooManyFiles is returned when a batch exceeds the file limit
	ErrTooManyFiles = errors.New("too many files")
	// ErrFileTooLarge is reported for inputs above the per-file byte limit
	ErrFileTooLarge = errors.New("file too large")
)

// Failure kinds reported by the loader
const (
	KindTooLarge   = "file_too_large"
	KindUnreadable = "file_unreadable"
)

var zipMagic = []byte("PK\x03\x04")

// Limits bound the size of a batch
type Limits struct {
	MaxFiles     int   `json:"max_files"`
	MaxFileBytes int64 `json:"max_file_bytes"`
}

// DefaultLimits returns the standard batch limits
func DefaultLimits() Limits {
	return Limits{MaxFiles: 500, MaxFileBytes: 20 << 20}
}

// Batch is a set of loaded documents plus the inputs that could not be used
type Batch struct {
	Documents []domain.Document `json:"-"`
	Failures  []domain.Failure  `json:"failures"`
}

// Merge appends another batch
func (b *Batch) Merge(other Batch) {
	b.Documents = append(b.Documents, other.Documents...)
	b.Failures = append(b.Failures, other.Failures...)
}

func (b *Batch) fail(source, kind string, err error) {
	b.Failures = append(b.Failures, domain.Failure{Source: source, Kind: kind, Reason: err.Error()})
}

// Loader reads documents within the configured limits
type Loader struct {
	limits Limits
	log    zerolog.Logger
}

// NewLoader creates a new document loader
func NewLoader(limits Limits, log zerolog.Logger) *Loader {
	def := DefaultLimits()
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = def.MaxFiles
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = def.MaxFileBytes
	}
	return &Loader{
		limits: limits,
		log:    log.With().Str("component", "source_loader").Logger(),
	}
}

// Limits returns the effective limits
func (l *Loader) Limits() Limits {
	return l.limits
}

// FromPaths loads files and directories. Directories contribute their .xml
// and .zip entries in name order, without recursion. Explicit file paths are
// read whatever their extension.
func (l *Loader) FromPaths(paths ...string) (Batch, error) {
	var batch Batch
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			batch.fail(p, KindUnreadable, err)
			continue
		}

		if !info.IsDir() {
			batch.Merge(l.fromFile(p, info.Size()))
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			batch.fail(p, KindUnreadable, err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !IsStatementName(entry.Name()) {
				continue
			}
			full := filepath.Join(p, entry.Name())
			entryInfo, err := entry.Info()
			if err != nil {
				batch.fail(full, KindUnreadable, err)
				continue
			}
			batch.Merge(l.fromFile(full, entryInfo.Size()))
		}
	}

	if err := l.checkCount(len(batch.Documents)); err != nil {
		return Batch{Failures: batch.Failures}, err
	}
	l.log.Debug().
		Int("documents", len(batch.Documents)).
		Int("failures", len(batch.Failures)).
		Msg("Loaded documents from paths")
	return batch, nil
}

// FromBytes wraps one uploaded payload. ZIP archives are expanded.
func (l *Loader) FromBytes(name string, data []byte) (Batch, error) {
	var batch Batch
	if isZip(name, data) {
		batch = l.fromZip(name, data)
	} else if err := l.checkSize(int64(len(data))); err != nil {
		batch.fail(name, KindTooLarge, err)
	} else {
		batch.Documents = append(batch.Documents, domain.Document{Name: name, Data: data})
	}

	if err := l.checkCount(len(batch.Documents)); err != nil {
		return Batch{Failures: batch.Failures}, err
	}
	return batch, nil
}

// CheckCount enforces the file limit on an assembled batch
func (l *Loader) CheckCount(batch Batch) error {
	return l.checkCount(len(batch.Documents))
}

func (l *Loader) checkCount(n int) error {
	if n > l.limits.MaxFiles {
		return fmt.Errorf("%w: %d documents, limit is %d", ErrTooManyFiles, n, l.limits.MaxFiles)
	}
	return nil
}

func (l *Loader) checkSize(size int64) error {
	if size > l.limits.MaxFileBytes {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, size, l.limits.MaxFileBytes)
	}
	return nil
}

func (l *Loader) fromFile(p string, size int64) Batch {
	var batch Batch
	zipped, err := sniffZip(p)
	if err != nil {
		batch.fail(p, KindUnreadable, err)
		return batch
	}
	if zipped {
		// archives are bounded per entry, not as a whole
		data, err := os.ReadFile(p)
		if err != nil {
			batch.fail(p, KindUnreadable, err)
			return batch
		}
		return l.fromZip(p, data)
	}

	if err := l.checkSize(size); err != nil {
		batch.fail(p, KindTooLarge, err)
		return batch
	}
	data, err := os.ReadFile(p)
	if err != nil {
		batch.fail(p, KindUnreadable, err)
		return batch
	}
	batch.Documents = append(batch.Documents, domain.Document{Name: p, Data: data})
	return batch
}

// fromZip expands the .xml entries of an archive in name order
func (l *Loader) fromZip(name string, data []byte) Batch {
	var batch Batch
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		batch.fail(name, KindUnreadable, fmt.Errorf("invalid zip archive: %w", err))
		return batch
	}

	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if !strings.EqualFold(path.Ext(f.Name), ".xml") {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	for _, f := range files {
		if err := l.checkSize(int64(f.UncompressedSize64)); err != nil {
			batch.fail(f.Name, KindTooLarge, err)
			continue
		}
		content, err := l.readEntry(f)
		if err != nil {
			kind := KindUnreadable
			if errors.Is(err, ErrFileTooLarge) {
				kind = KindTooLarge
			}
			batch.fail(f.Name, kind, err)
			continue
		}
		batch.Documents = append(batch.Documents, domain.Document{Name: f.Name, Data: content})
	}

	l.log.Debug().
		Str("archive", name).
		Int("entries", len(files)).
		Msg("Expanded zip archive")
	return batch
}

// readEntry never reads past the size limit, whatever the header claims
func (l *Loader) readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, l.limits.MaxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if err := l.checkSize(int64(len(content))); err != nil {
		return nil, err
	}
	return content, nil
}

// IsStatementName reports whether a file name looks like a statement or an
// archive of statements
func IsStatementName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xml", ".zip":
		return true
	default:
		return false
	}
}

// sniffZip checks the extension, then the leading magic bytes
func sniffZip(p string) (bool, error) {
	if strings.EqualFold(filepath.Ext(p), ".zip") {
		return true, nil
	}
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return bytes.Equal(head[:n], zipMagic), nil
}

func isZip(name string, data []byte) bool {
	return strings.EqualFold(path.Ext(name), ".zip") || bytes.HasPrefix(data, zipMagic)
}
