package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/textkernel/tx-go/pkg/faults"
)

// Payload is the parsed document. Later stages augment the same payload
// (geocoordinates are merged into its address fields) rather than replacing it.
type Payload struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Metadata describes how the parsing stage ran. TimedOut can be true on a
// successful parse, meaning the payload may be incomplete.
type Metadata struct {
	TimedOut               bool  `json:"timed_out"`
	TimedOutAtMilliseconds *int  `json:"timed_out_at_ms,omitempty"`
	ElapsedMilliseconds    int64 `json:"elapsed_ms"`
}

// Info describes the transaction as a whole.
type Info struct {
	TransactionID    string  `json:"transaction_id"`
	EngineVersion    string  `json:"engine_version"`
	APIVersion       string  `json:"api_version"`
	TransactionCost  float64 `json:"transaction_cost"`
	CreditsRemaining float64 `json:"credits_remaining"`
}

// CompositeResponse is the raw multi-stage result for one submitted document.
// Stage outcomes are nil when the stage was not attempted.
type CompositeResponse struct {
	Parsing                 *StageOutcome `json:"parsing"`
	Geocoding               *StageOutcome `json:"geocoding,omitempty"`
	Indexing                *StageOutcome `json:"indexing,omitempty"`
	ProfessionNormalization *StageOutcome `json:"profession_normalization,omitempty"`
	Payload                 *Payload      `json:"payload,omitempty"`
	Metadata                Metadata      `json:"metadata"`
	Info                    Info          `json:"info"`
}

// Outcome returns the outcome reported for stage s, or nil if absent.
func (r *CompositeResponse) Outcome(s Stage) *StageOutcome {
	switch s {
	case StageParsing:
		return r.Parsing
	case StageGeocoding:
		return r.Geocoding
	case StageIndexing:
		return r.Indexing
	case StageProfessionNormalization:
		return r.ProfessionNormalization
	}
	return nil
}

// Validate reports ErrUnexpectedResponse for responses that break the
// processor contract: no parsing stage, or a successful parse without payload.
func (r *CompositeResponse) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil response", faults.ErrUnexpectedResponse)
	}
	if r.Parsing == nil {
		return fmt.Errorf("%w: parsing stage missing", faults.ErrUnexpectedResponse)
	}
	if r.Parsing.Success && r.Payload == nil {
		return fmt.Errorf("%w: parsing succeeded without payload", faults.ErrUnexpectedResponse)
	}
	return nil
}
