// Package format identifies document containers before they are loaded.
package format

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a zip-based document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a WordprocessingML document (.docx, .docm, .dotx).
	DOCX
	// XLSX indicates a SpreadsheetML workbook.
	XLSX
	// PPTX indicates a PresentationML deck.
	PPTX
	// ODT indicates an OpenDocument Text document.
	ODT
)

// ErrNotZip is returned when the content does not start with a zip local
// file header.
var ErrNotZip = errors.New("format: not a zip archive")

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case ODT:
		return "ODT"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	case ODT:
		return ".odt"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return DOCX
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".odt":
		return ODT
	default:
		return Unknown
	}
}

// Main part content types declared in [Content_Types].xml.
var mainPartTypes = map[string]Format{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml":   DOCX,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.template.main+xml":   DOCX,
	"application/vnd.ms-word.document.macroEnabled.main+xml":                             DOCX,
	"application/vnd.ms-word.template.macroEnabledTemplate.main+xml":                     DOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml":         XLSX,
	"application/vnd.ms-excel.sheet.macroEnabled.main+xml":                               XLSX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml": PPTX,
	"application/vnd.ms-powerpoint.presentation.macroEnabled.main+xml":                   PPTX,
}

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// IsZip reports whether data starts with a zip local file header.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// SniffFile opens path and identifies its container format.
func SniffFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Unknown, err
	}
	return Sniff(f, info.Size())
}

// Sniff inspects the content to determine the format. It returns ErrNotZip
// when the magic bytes are wrong and a wrapped zip error when the central
// directory cannot be read. A readable zip that is not a known document
// format yields Unknown with a nil error.
func Sniff(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, len(zipMagic))
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	if !IsZip(magic[:n]) {
		return Unknown, ErrNotZip
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, fmt.Errorf("format: open zip: %w", err)
	}
	return detectZIPFormat(zr), nil
}

// detectZIPFormat inspects an opened archive. OpenDocument is recognised by
// its mimetype entry, Office Open XML by the content type of its main part.
func detectZIPFormat(zr *zip.Reader) Format {
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			if data, err := readSmall(f, 256); err == nil &&
				strings.Contains(string(data), "application/vnd.oasis.opendocument.text") {
				return ODT
			}
		}
	}

	for _, f := range zr.File {
		if f.Name != "[Content_Types].xml" {
			continue
		}
		data, err := readSmall(f, 1<<20)
		if err != nil {
			return Unknown
		}
		return formatFromContentTypes(data)
	}
	return Unknown
}

type contentTypes struct {
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

func formatFromContentTypes(data []byte) Format {
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return Unknown
	}
	for _, o := range ct.Overrides {
		if f, ok := mainPartTypes[strings.TrimSpace(o.ContentType)]; ok {
			return f
		}
	}
	return Unknown
}

func readSmall(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, limit))
}
