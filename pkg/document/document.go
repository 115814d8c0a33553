// Package document provides the validated unit of input submitted to the
// parsing service: the raw file bytes plus the date the document is
// interpreted as of. The service resolves relative dates such as "current"
// or "present" against that date.
package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/textkernel/tx-go/pkg/faults"
)

// DateLayout is the wire layout of the as-of date.
const DateLayout = "2006-01-02"

var epoch = time.Unix(0, 0).UTC()

// Document is immutable once constructed.
type Document struct {
	data []byte
	asOf time.Time
	name string
}

// New validates and returns a Document. The bytes are copied.
func New(data []byte, asOf time.Time) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: document bytes are empty", faults.ErrInvalidArgument)
	}
	if asOf.IsZero() || !asOf.After(epoch) {
		return nil, fmt.Errorf("%w: as-of date %s is not a valid date", faults.ErrInvalidArgument, asOf.Format(DateLayout))
	}

	return &Document{
		data: bytes.Clone(data),
		asOf: asOf,
	}, nil
}

// FromFile reads the file at path and uses its modification time as the
// as-of date.
func FromFile(path string) (*Document, error) {
	info, err := stat(path)
	if err != nil {
		return nil, err
	}
	return read(path, info.ModTime())
}

// FromFileAsOf reads the file at path with an explicit as-of date.
func FromFileAsOf(path string, asOf time.Time) (*Document, error) {
	if _, err := stat(path); err != nil {
		return nil, err
	}
	return read(path, asOf)
}

// Bytes returns a copy of the document content.
func (d *Document) Bytes() []byte {
	return bytes.Clone(d.data)
}

// Size returns the content length in bytes.
func (d *Document) Size() int {
	return len(d.data)
}

// AsOf returns the date the document is interpreted as of.
func (d *Document) AsOf() time.Time {
	return d.asOf
}

// AsOfDate returns the as-of date in wire layout.
func (d *Document) AsOfDate() string {
	return d.asOf.Format(DateLayout)
}

// Name returns the base file name for documents read from disk, or "".
func (d *Document) Name() string {
	return d.name
}

// Base64 returns the standard base64 encoding of the content.
func (d *Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.data)
}

func stat(path string) (fs.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: path is blank", faults.ErrInvalidArgument)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", faults.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", faults.ErrInvalidArgument, path)
	}

	return info, nil
}

func read(path string, asOf time.Time) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", faults.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := New(data, asOf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.name = filepath.Base(path)

	return doc, nil
}
