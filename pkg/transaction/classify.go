package transaction

// OutcomeKind is the local verdict on a composite transaction.
type OutcomeKind int

const (
	// OutcomeUnknown is the zero value and is never returned by Classify.
	OutcomeUnknown OutcomeKind = iota
	// OutcomeFullSuccess means every requested, attempted stage succeeded.
	OutcomeFullSuccess
	// OutcomeUsableFailure means parsing succeeded but a later stage failed.
	// The payload from every prior stage is still available.
	OutcomeUsableFailure
	// OutcomeHardFailure means parsing failed and no payload exists.
	OutcomeHardFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFullSuccess:
		return "full_success"
	case OutcomeUsableFailure:
		return "usable_failure"
	case OutcomeHardFailure:
		return "hard_failure"
	}
	return "unknown"
}

// Outcome is the classification of a CompositeResponse. Stage and Error are
// set for both failure kinds; Payload is nil for HardFailure.
type Outcome struct {
	Kind     OutcomeKind
	Stage    Stage
	Error    ErrorInfo
	Payload  *Payload
	Response *CompositeResponse
}

// TimedOut reports whether parsing hit the service timeout. It does not
// affect classification: a timed-out parse can still be a FullSuccess.
func (o Outcome) TimedOut() bool {
	return o.Response != nil && o.Response.Metadata.TimedOut
}

// codeUnexpectedResponse is reported for responses that fail Validate.
const codeUnexpectedResponse = "UnexpectedResponse"

// Classify decides the outcome of resp given the options it was requested
// with. It is total: responses that fail Validate classify as a HardFailure
// on Parsing, but callers are expected to run Validate first and surface
// those as ErrUnexpectedResponse.
//
// After parsing succeeds the optional stages are walked in fixed order and the
// first requested stage that reported failure decides the outcome. Stages
// that were requested but not attempted are skipped.
func Classify(opts Options, resp *CompositeResponse) Outcome {
	if err := resp.Validate(); err != nil {
		return Outcome{
			Kind:     OutcomeHardFailure,
			Stage:    StageParsing,
			Error:    ErrorInfo{Code: codeUnexpectedResponse, Message: err.Error()},
			Response: resp,
		}
	}

	if !resp.Parsing.Success {
		return Outcome{
			Kind:     OutcomeHardFailure,
			Stage:    StageParsing,
			Error:    resp.Parsing.Info(),
			Response: resp,
		}
	}

	for _, stage := range optionalStages {
		if !opts.Requested(stage) {
			continue
		}

		outcome := resp.Outcome(stage)
		if outcome == nil {
			continue
		}

		if !outcome.Success {
			return Outcome{
				Kind:     OutcomeUsableFailure,
				Stage:    stage,
				Error:    outcome.Info(),
				Payload:  resp.Payload,
				Response: resp,
			}
		}
	}

	return Outcome{
		Kind:     OutcomeFullSuccess,
		Payload:  resp.Payload,
		Response: resp,
	}
}
