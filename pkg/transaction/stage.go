// Package transaction models one composite transaction against the parsing
// service: the request submitted for a document, the multi-stage response
// returned for it, and the classifier that turns that response into a
// FullSuccess, UsableFailure or HardFailure outcome.
package transaction

// Stage identifies an independently reported phase of a composite transaction.
type Stage string

// Stages in evaluation order. Parsing is mandatory; the others run only when requested.
const (
	StageParsing                 Stage = "Parsing"
	StageGeocoding               Stage = "Geocoding"
	StageIndexing                Stage = "Indexing"
	StageProfessionNormalization Stage = "ProfessionNormalization"
)

// optionalStages is the fixed order the classifier walks after parsing succeeds.
// Geocoding precedes indexing because an index entry may require coordinates.
var optionalStages = []Stage{
	StageGeocoding,
	StageIndexing,
	StageProfessionNormalization,
}

// Stages returns every stage in evaluation order.
func Stages() []Stage {
	return append([]Stage{StageParsing}, optionalStages...)
}

// ErrorInfo is the code and message a failed stage reported.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorInfo) String() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// StageOutcome is the result the service reported for one stage.
// A stage that was not attempted has no StageOutcome at all.
type StageOutcome struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Info returns the code and message of the outcome.
func (o StageOutcome) Info() ErrorInfo {
	return ErrorInfo{Code: o.Code, Message: o.Message}
}
