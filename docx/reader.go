// Package docx loads WordprocessingML (.docx) containers and builds the
// document model that quality-control rules evaluate.
//
// Loading is eager: Load extracts and parses every part the engine needs,
// so a successful load never touches the file again and a failed one
// returns a single typed error (CorruptContainerError, MissingPartError or
// MalformedPartError). Build then resolves every style, numbering and
// relationship reference, failing with ReferenceIntegrityError on the first
// one that dangles.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/tsawler/docqc/format"
)

// Container part names.
const (
	PartDocument      = "word/document.xml"
	PartStyles        = "word/styles.xml"
	PartNumbering     = "word/numbering.xml"
	PartCoreProps     = "docProps/core.xml"
	PartRelationships = "word/_rels/document.xml.rels"
	PartAppProps      = "docProps/app.xml"
	PartCustomProps   = "docProps/custom.xml"
)

// DefaultMaxPartSize caps the decompressed size of a single part.
const DefaultMaxPartSize = 64 << 20

// WhitelistedParts returns the structural parts the loader extracts. All of
// them are required unless narrowed with WithRequiredParts.
func WhitelistedParts() []string {
	return []string{PartDocument, PartStyles, PartNumbering, PartCoreProps, PartRelationships}
}

var errPartTooLarge = errors.New("part exceeds size limit")

// RawParts holds the parsed parts of one container. It is produced by Load
// and consumed by Build.
type RawParts struct {
	path    string
	present map[string]bool

	document  *documentXML
	styles    *stylesXML
	numbering *numberingXML
	rels      *relationshipsXML
	core      *corePropertiesXML
	app       *appPropertiesXML
	custom    *customPropertiesXML

	// media holds raw bytes of image parts keyed by part name.
	media map[string][]byte
}

// Path returns the file the parts were loaded from.
func (p *RawParts) Path() string { return p.path }

// Has reports whether the container held the named part.
func (p *RawParts) Has(part string) bool { return p.present[part] }

// MediaNames returns the names of the extracted image parts, sorted.
func (p *RawParts) MediaNames() []string {
	names := make([]string, 0, len(p.media))
	for name := range p.media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load opens the container at path and eagerly extracts and parses every
// part the model builder needs.
func Load(path string, opts ...Option) (*RawParts, error) {
	o := newOptions(opts)

	if err := sniff(path); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &CorruptContainerError{Path: path, Err: err}
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, dup := files[f.Name]; !dup {
			files[f.Name] = f
		}
	}

	l := &loader{path: path, files: files, maxPartSize: o.maxPartSize}
	parts := &RawParts{
		path:    path,
		present: make(map[string]bool),
		media:   make(map[string][]byte),
	}

	required := make(map[string]bool)
	for _, name := range o.requiredParts() {
		required[name] = true
	}

	// Relationships come first: image targets decide which media to extract.
	for _, p := range []struct {
		name string
		dest any
	}{
		{PartRelationships, &parts.rels},
		{PartDocument, &parts.document},
		{PartStyles, &parts.styles},
		{PartNumbering, &parts.numbering},
		{PartCoreProps, &parts.core},
		{PartAppProps, &parts.app},
		{PartCustomProps, &parts.custom},
	} {
		found, err := l.parsePart(p.name, p.dest)
		if err != nil {
			return nil, err
		}
		if !found && required[p.name] {
			return nil, &MissingPartError{Part: p.name}
		}
		parts.present[p.name] = found
	}

	if err := l.extractMedia(parts); err != nil {
		return nil, err
	}

	o.logger.Debug("loaded docx container",
		"path", path,
		"parts", len(parts.present),
		"media", len(parts.media))

	return parts, nil
}

// sniff rejects anything that is not a zip holding a WordprocessingML main part.
func sniff(path string) error {
	f, err := format.SniffFile(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("docx: %w", err)
		}
		if errors.Is(err, format.ErrNotZip) {
			return &CorruptContainerError{Path: path, Reason: "not a zip archive"}
		}
		return &CorruptContainerError{Path: path, Err: err}
	}
	switch f {
	case format.DOCX:
		return nil
	case format.Unknown:
		return &CorruptContainerError{Path: path, Reason: "no WordprocessingML main part"}
	default:
		return &CorruptContainerError{Path: path, Reason: fmt.Sprintf("container holds %s, not DOCX", f)}
	}
}

type loader struct {
	path        string
	files       map[string]*zip.File
	maxPartSize int64
}

// parsePart reads and unmarshals a part into dest, which must be a pointer
// to a pointer. It reports whether the part exists.
func (l *loader) parsePart(name string, dest any) (bool, error) {
	f, ok := l.files[name]
	if !ok {
		return false, nil
	}
	data, err := l.read(f)
	if err != nil {
		return true, err
	}

	var target any
	switch d := dest.(type) {
	case **documentXML:
		*d = &documentXML{}
		target = *d
	case **stylesXML:
		*d = &stylesXML{}
		target = *d
	case **numberingXML:
		*d = &numberingXML{}
		target = *d
	case **relationshipsXML:
		*d = &relationshipsXML{}
		target = *d
	case **corePropertiesXML:
		*d = &corePropertiesXML{}
		target = *d
	case **appPropertiesXML:
		*d = &appPropertiesXML{}
		target = *d
	case **customPropertiesXML:
		*d = &customPropertiesXML{}
		target = *d
	default:
		return true, fmt.Errorf("docx: no decoder for part %s", name)
	}

	if err := xml.Unmarshal(data, target); err != nil {
		return true, &MalformedPartError{Part: name, Err: err}
	}
	return true, nil
}

// read returns the decompressed content of a zip entry, refusing entries
// larger than the configured limit.
func (l *loader) read(f *zip.File) ([]byte, error) {
	if l.maxPartSize > 0 && f.UncompressedSize64 > uint64(l.maxPartSize) {
		return nil, &CorruptContainerError{Path: l.path, Reason: f.Name, Err: errPartTooLarge}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &CorruptContainerError{Path: l.path, Reason: f.Name, Err: err}
	}
	defer rc.Close()

	var r io.Reader = rc
	if l.maxPartSize > 0 {
		r = io.LimitReader(rc, l.maxPartSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &CorruptContainerError{Path: l.path, Reason: f.Name, Err: err}
	}
	if l.maxPartSize > 0 && int64(len(data)) > l.maxPartSize {
		return nil, &CorruptContainerError{Path: l.path, Reason: f.Name, Err: errPartTooLarge}
	}
	return data, nil
}

// extractMedia reads every word/media entry plus any other internal image
// relationship target.
func (l *loader) extractMedia(parts *RawParts) error {
	names := make(map[string]bool)
	for name := range l.files {
		if strings.HasPrefix(name, "word/media/") && !strings.HasSuffix(name, "/") {
			names[name] = true
		}
	}
	if parts.rels != nil {
		for _, rel := range parts.rels.Relationships {
			if isImageRelationship(rel) && !rel.external() {
				names[resolveTarget(rel.Target)] = true
			}
		}
	}

	for name := range names {
		f, ok := l.files[name]
		if !ok {
			// Dangling targets surface as missing images in the model.
			continue
		}
		data, err := l.read(f)
		if err != nil {
			return err
		}
		parts.media[name] = data
	}
	return nil
}

func isImageRelationship(rel relationshipXML) bool {
	return strings.HasSuffix(rel.Type, "/image")
}

// resolveTarget turns a relationship target of word/document.xml into a
// container part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join("word", target))
}

// options configures Load and Build.
type options struct {
	required    []string
	maxPartSize int64
	logger      *slog.Logger
	recognizer  TextRecognizer
}

// Option configures Load and Build.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		maxPartSize: DefaultMaxPartSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) requiredParts() []string {
	if len(o.required) == 0 {
		return WhitelistedParts()
	}
	return o.required
}

// WithRequiredParts narrows the set of whitelisted parts whose absence
// fails the load. An absent optional part is treated as empty.
func WithRequiredParts(parts ...string) Option {
	return func(o *options) {
		o.required = append([]string(nil), parts...)
	}
}

// WithMaxPartSize sets the decompressed size limit for a single part. Zero
// or less disables the limit.
func WithMaxPartSize(n int64) Option {
	return func(o *options) {
		o.maxPartSize = n
	}
}

// WithLogger sets the logger used while loading and building.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTextRecognizer enables text recognition on embedded images during Build.
func WithTextRecognizer(r TextRecognizer) Option {
	return func(o *options) {
		o.recognizer = r
	}
}
