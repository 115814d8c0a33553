package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/formatting"
	"github.com/textkernel/tx-go/pkg/transaction"
)

const (
	EnvBatchRoot                 = "TX_BATCH_ROOT"
	EnvBatchRecurse              = "TX_BATCH_RECURSE"
	EnvBatchKind                 = "TX_BATCH_KIND"
	EnvBatchMaxBatchSize         = "TX_BATCH_MAX_BATCH_SIZE"
	EnvBatchAllowedExtensions    = "TX_BATCH_ALLOWED_EXTENSIONS"
	EnvBatchDisallowedExtensions = "TX_BATCH_DISALLOWED_EXTENSIONS"
	EnvBatchMaxPDFPages          = "TX_BATCH_MAX_PDF_PAGES"
	EnvBatchMaxDocumentSize      = "TX_BATCH_MAX_DOCUMENT_SIZE"
	EnvBatchIndexID              = "TX_BATCH_INDEX_ID"
)

// BatchConfig describes the directory to process and the request template
// applied to every file in it.
type BatchConfig struct {
	Root                 string              `toml:"root"`
	Recurse              bool                `toml:"recurse"`
	Kind                 string              `toml:"kind"`
	MaxBatchSize         int                 `toml:"max_batch_size"`
	AllowedExtensions    []string            `toml:"allowed_extensions"`
	DisallowedExtensions []string            `toml:"disallowed_extensions"`
	MaxPDFPages          int                 `toml:"max_pdf_pages"`
	MaxDocumentSize      string              `toml:"max_document_size"`
	Options              transaction.Options `toml:"options"`
}

// MaxDocumentSizeBytes parses MaxDocumentSize, returning 0 when unset.
func (c *BatchConfig) MaxDocumentSizeBytes() int64 {
	if c.MaxDocumentSize == "" {
		return 0
	}
	n, _ := formatting.ParseSize(c.MaxDocumentSize)
	return n
}

// Policy builds the filter policy. A positive MaxPDFPages installs the page
// count predicate and a MaxDocumentSize installs the file size predicate.
func (c *BatchConfig) Policy() *batch.Policy {
	p := &batch.Policy{
		MaxBatchSize:         c.MaxBatchSize,
		AllowedExtensions:    c.AllowedExtensions,
		DisallowedExtensions: c.DisallowedExtensions,
	}

	var preds []func(string) bool
	if n := c.MaxDocumentSizeBytes(); n > 0 {
		preds = append(preds, batch.MaxDocumentSize(n))
	}
	if c.MaxPDFPages > 0 {
		preds = append(preds, batch.MaxPDFPages(c.MaxPDFPages))
	}
	if len(preds) > 0 {
		p.Predicate = batch.All(preds...)
	}
	return p
}

// Template builds the request template shared by every file.
func (c *BatchConfig) Template() transaction.Template {
	return transaction.Template{
		Kind:    transaction.Kind(c.Kind),
		Options: c.Options,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *BatchConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *BatchConfig) Merge(overlay *BatchConfig) {
	if overlay.Recurse {
		c.Recurse = true
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.MaxBatchSize != 0 {
		c.MaxBatchSize = overlay.MaxBatchSize
	}
	if overlay.AllowedExtensions != nil {
		c.AllowedExtensions = overlay.AllowedExtensions
	}
	if overlay.DisallowedExtensions != nil {
		c.DisallowedExtensions = overlay.DisallowedExtensions
	}
	if overlay.MaxPDFPages != 0 {
		c.MaxPDFPages = overlay.MaxPDFPages
	}
	if overlay.MaxDocumentSize != "" {
		c.MaxDocumentSize = overlay.MaxDocumentSize
	}
	if overlay.Options.Configuration != "" {
		c.Options.Configuration = overlay.Options.Configuration
	}
	if overlay.Options.Geocode != nil {
		c.Options.Geocode = overlay.Options.Geocode
	}
	if overlay.Options.Index != nil {
		c.Options.Index = overlay.Options.Index
	}
	if overlay.Options.ProfessionNormalization != nil {
		c.Options.ProfessionNormalization = overlay.Options.ProfessionNormalization
	}
}

func (c *BatchConfig) loadDefaults() {
	if c.Kind == "" {
		c.Kind = string(transaction.KindResume)
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 1000
	}
}

func (c *BatchConfig) loadEnv() {
	if v := os.Getenv(EnvBatchRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvBatchRecurse); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Recurse = b
		}
	}
	if v := os.Getenv(EnvBatchKind); v != "" {
		c.Kind = v
	}
	if v := os.Getenv(EnvBatchMaxBatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBatchSize = n
		}
	}
	if v := os.Getenv(EnvBatchAllowedExtensions); v != "" {
		c.AllowedExtensions = splitList(v)
	}
	if v := os.Getenv(EnvBatchDisallowedExtensions); v != "" {
		c.DisallowedExtensions = splitList(v)
	}
	if v := os.Getenv(EnvBatchMaxPDFPages); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPDFPages = n
		}
	}
	if v := os.Getenv(EnvBatchMaxDocumentSize); v != "" {
		c.MaxDocumentSize = v
	}
	if v := os.Getenv(EnvBatchIndexID); v != "" {
		if c.Options.Index == nil {
			c.Options.Index = &transaction.IndexOptions{}
		}
		c.Options.Index.IndexID = v
	}
}

func (c *BatchConfig) validate() error {
	if !transaction.Kind(c.Kind).Valid() {
		return fmt.Errorf("invalid kind %q", c.Kind)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive")
	}
	if c.MaxPDFPages < 0 {
		return fmt.Errorf("max_pdf_pages must not be negative")
	}
	if c.MaxDocumentSize != "" {
		n, err := formatting.ParseSize(c.MaxDocumentSize)
		if err != nil {
			return fmt.Errorf("max_document_size: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("max_document_size must be positive, got %q", c.MaxDocumentSize)
		}
	}
	if idx := c.Options.Index; idx != nil && strings.TrimSpace(idx.IndexID) == "" {
		return fmt.Errorf("options.index.index_id required when indexing")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
