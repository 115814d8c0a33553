package transaction

import (
	"fmt"
	"slices"
	"strings"

	"github.com/textkernel/tx-go/pkg/document"
	"github.com/textkernel/tx-go/pkg/faults"
)

// Kind selects which parser handles the document.
type Kind string

// Document kinds accepted by the service.
const (
	KindResume Kind = "resume"
	KindJob    Kind = "job"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindResume || k == KindJob
}

// GeocodeProvider names the geocoding backend the service should use.
type GeocodeProvider string

// Geocode providers.
const (
	GeocodeProviderGoogle GeocodeProvider = "Google"
	GeocodeProviderBing   GeocodeProvider = "Bing"
)

// GeocodeOptions requests the geocoding stage.
type GeocodeOptions struct {
	Provider    GeocodeProvider `toml:"provider" json:"provider,omitempty"`
	ProviderKey string          `toml:"provider_key" json:"provider_key,omitempty"`
}

// IndexOptions requests the indexing stage. IndexID and DocumentID are
// required when indexing is requested.
type IndexOptions struct {
	IndexID         string   `toml:"index_id" json:"index_id"`
	DocumentID      string   `toml:"document_id" json:"document_id"`
	UserDefinedTags []string `toml:"user_defined_tags" json:"user_defined_tags,omitempty"`
	// ProceedIfGeocodeFailed lets indexing run after a failed geocode.
	// When false the service skips indexing and reports no indexing outcome.
	ProceedIfGeocodeFailed bool `toml:"proceed_if_geocode_failed" json:"proceed_if_geocode_failed"`
}

// ProfessionOptions requests the profession normalization stage.
type ProfessionOptions struct {
	Version string `toml:"version" json:"version,omitempty"`
}

// Options carries the optional sub-requests of a transaction. A sub-request
// is requested when its pointer is non-nil.
//
// Options is treated as a value: WithDocumentID returns a copy rather than
// patching the receiver, so a batch template can be shared across files.
type Options struct {
	Configuration           string             `toml:"configuration" json:"configuration,omitempty"`
	Geocode                 *GeocodeOptions    `toml:"geocode" json:"geocode,omitempty"`
	Index                   *IndexOptions      `toml:"index" json:"index,omitempty"`
	ProfessionNormalization *ProfessionOptions `toml:"profession_normalization" json:"profession_normalization,omitempty"`
}

// Requested reports whether stage s was requested. Parsing is always requested.
func (o Options) Requested(s Stage) bool {
	switch s {
	case StageParsing:
		return true
	case StageGeocoding:
		return o.Geocode != nil
	case StageIndexing:
		return o.Index != nil
	case StageProfessionNormalization:
		return o.ProfessionNormalization != nil
	}
	return false
}

// WithDocumentID returns a copy of o whose indexing options carry id.
// When indexing is not requested the copy is returned unchanged.
func (o Options) WithDocumentID(id string) Options {
	if o.Index == nil {
		return o
	}

	idx := *o.Index
	idx.UserDefinedTags = slices.Clone(o.Index.UserDefinedTags)
	idx.DocumentID = id
	o.Index = &idx

	return o
}

// Template is the request shape shared by every file of a batch.
type Template struct {
	Kind    Kind
	Options Options
}

// Request builds the request for doc, injecting documentID into a copy of
// the template's indexing options.
func (t Template) Request(doc *document.Document, documentID string) *Request {
	return &Request{
		Document: doc,
		Kind:     t.Kind,
		Options:  t.Options.WithDocumentID(documentID),
	}
}

// Request is a document plus the options of one composite transaction.
type Request struct {
	Document *document.Document
	Kind     Kind
	Options  Options
}

// Validate checks the caller-supplied parts of the request.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", faults.ErrInvalidArgument)
	}
	if r.Document == nil {
		return fmt.Errorf("%w: document is nil", faults.ErrInvalidArgument)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown document kind %q", faults.ErrInvalidArgument, r.Kind)
	}
	if idx := r.Options.Index; idx != nil {
		if strings.TrimSpace(idx.IndexID) == "" {
			return fmt.Errorf("%w: index id required when indexing", faults.ErrInvalidArgument)
		}
		if strings.TrimSpace(idx.DocumentID) == "" {
			return fmt.Errorf("%w: document id required when indexing", faults.ErrInvalidArgument)
		}
	}
	return nil
}
