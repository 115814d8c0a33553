package client

import (
	"encoding/json"
	"slices"

	"github.com/textkernel/tx-go/pkg/transaction"
)

// Parsing codes that still produce a usable payload.
var parseSuccessCodes = []string{
	"Success",
	"WarningsFoundDuringParsing",
	"PossibleTruncationFromTimeout",
	"SomeErrors",
}

const codeSuccess = "Success"

type parseRequest struct {
	DocumentAsBase64String string               `json:"DocumentAsBase64String"`
	DocumentLastModified   string               `json:"DocumentLastModified"`
	Configuration          string               `json:"Configuration,omitempty"`
	GeocodeOptions         *geocodeOptions      `json:"GeocodeOptions,omitempty"`
	IndexingOptions        *indexingOptions     `json:"IndexingOptions,omitempty"`
	ProfessionsSettings    *professionsSettings `json:"ProfessionsSettings,omitempty"`
}

type geocodeOptions struct {
	IncludeGeocoding bool   `json:"IncludeGeocoding"`
	Provider         string `json:"Provider,omitempty"`
	ProviderKey      string `json:"ProviderKey,omitempty"`
}

type indexingOptions struct {
	IndexID                string   `json:"IndexId"`
	DocumentID             string   `json:"DocumentId"`
	UserDefinedTags        []string `json:"UserDefinedTags,omitempty"`
	ProceedIfGeocodeFailed bool     `json:"ProceedIfGeocodeFailed"`
}

type professionsSettings struct {
	Normalize bool   `json:"Normalize"`
	Version   string `json:"Version,omitempty"`
}

func newParseRequest(req *transaction.Request) parseRequest {
	body := parseRequest{
		DocumentAsBase64String: req.Document.Base64(),
		DocumentLastModified:   req.Document.AsOfDate(),
		Configuration:          req.Options.Configuration,
	}

	if g := req.Options.Geocode; g != nil {
		body.GeocodeOptions = &geocodeOptions{
			IncludeGeocoding: true,
			Provider:         string(g.Provider),
			ProviderKey:      g.ProviderKey,
		}
	}
	if idx := req.Options.Index; idx != nil {
		body.IndexingOptions = &indexingOptions{
			IndexID:                idx.IndexID,
			DocumentID:             idx.DocumentID,
			UserDefinedTags:        idx.UserDefinedTags,
			ProceedIfGeocodeFailed: idx.ProceedIfGeocodeFailed,
		}
	}
	if p := req.Options.ProfessionNormalization; p != nil {
		body.ProfessionsSettings = &professionsSettings{
			Normalize: true,
			Version:   p.Version,
		}
	}

	return body
}

type envelope struct {
	Info  apiInfo        `json:"Info"`
	Value *responseValue `json:"Value"`
}

type apiInfo struct {
	Code            string          `json:"Code"`
	Message         string          `json:"Message"`
	TransactionID   string          `json:"TransactionId"`
	EngineVersion   string          `json:"EngineVersion"`
	APIVersion      string          `json:"ApiVersion"`
	TransactionCost float64         `json:"TransactionCost"`
	CustomerDetails customerDetails `json:"CustomerDetails"`
}

type customerDetails struct {
	CreditsRemaining float64 `json:"CreditsRemaining"`
}

type apiStatus struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type parsingMetadata struct {
	TimedOut               bool  `json:"TimedOut"`
	TimedOutAtMilliseconds *int  `json:"TimedOutAtMilliseconds"`
	ElapsedMilliseconds    int64 `json:"ElapsedMilliseconds"`
}

type responseValue struct {
	ParsingResponse                 *apiStatus      `json:"ParsingResponse"`
	GeocodeResponse                 *apiStatus      `json:"GeocodeResponse"`
	IndexingResponse                *apiStatus      `json:"IndexingResponse"`
	ProfessionNormalizationResponse *apiStatus      `json:"ProfessionNormalizationResponse"`
	ResumeData                      json.RawMessage `json:"ResumeData"`
	JobData                         json.RawMessage `json:"JobData"`
	ParsingMetadata                 parsingMetadata `json:"ParsingMetadata"`
}

func (i apiInfo) toInfo() transaction.Info {
	return transaction.Info{
		TransactionID:    i.TransactionID,
		EngineVersion:    i.EngineVersion,
		APIVersion:       i.APIVersion,
		TransactionCost:  i.TransactionCost,
		CreditsRemaining: i.CustomerDetails.CreditsRemaining,
	}
}

func stageOutcome(s *apiStatus, success func(code string) bool) *transaction.StageOutcome {
	if s == nil {
		return nil
	}
	return &transaction.StageOutcome{
		Code:    s.Code,
		Message: s.Message,
		Success: success(s.Code),
	}
}

func isParseSuccess(code string) bool {
	return slices.Contains(parseSuccessCodes, code)
}

func isStageSuccess(code string) bool {
	return code == codeSuccess
}

// compositeResponse converts a 200 envelope. The parsing outcome falls back
// to the envelope info when the value omits it.
func (e *envelope) compositeResponse(kind transaction.Kind) *transaction.CompositeResponse {
	resp := &transaction.CompositeResponse{Info: e.Info.toInfo()}

	v := e.Value
	if v == nil {
		resp.Parsing = stageOutcome(&apiStatus{Code: e.Info.Code, Message: e.Info.Message}, isParseSuccess)
		return resp
	}

	parsing := v.ParsingResponse
	if parsing == nil {
		parsing = &apiStatus{Code: e.Info.Code, Message: e.Info.Message}
	}

	resp.Parsing = stageOutcome(parsing, isParseSuccess)
	resp.Geocoding = stageOutcome(v.GeocodeResponse, isStageSuccess)
	resp.Indexing = stageOutcome(v.IndexingResponse, isStageSuccess)
	resp.ProfessionNormalization = stageOutcome(v.ProfessionNormalizationResponse, isStageSuccess)
	resp.Metadata = transaction.Metadata{
		TimedOut:               v.ParsingMetadata.TimedOut,
		TimedOutAtMilliseconds: v.ParsingMetadata.TimedOutAtMilliseconds,
		ElapsedMilliseconds:    v.ParsingMetadata.ElapsedMilliseconds,
	}

	data := v.ResumeData
	if kind == transaction.KindJob {
		data = v.JobData
	}
	if resp.Parsing.Success && len(data) > 0 && string(data) != "null" {
		resp.Payload = &transaction.Payload{Kind: kind, Data: data}
	}

	return resp
}

// documentFailure converts an error envelope whose info describes a problem
// with the submitted document into a failed parse.
func (e *envelope) documentFailure() *transaction.CompositeResponse {
	return &transaction.CompositeResponse{
		Parsing: &transaction.StageOutcome{Code: e.Info.Code, Message: e.Info.Message},
		Info:    e.Info.toInfo(),
	}
}
