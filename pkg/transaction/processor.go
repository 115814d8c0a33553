package transaction

import (
	"context"
	"fmt"

	"github.com/textkernel/tx-go/pkg/faults"
)

// Processor submits one composite transaction to the parsing service.
// A returned error is a transport or authentication fault and wraps
// faults.ErrTransport; stage failures are reported in the response.
type Processor interface {
	Submit(ctx context.Context, req *Request) (*CompositeResponse, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, req *Request) (*CompositeResponse, error)

// Submit calls f.
func (f ProcessorFunc) Submit(ctx context.Context, req *Request) (*CompositeResponse, error) {
	return f(ctx, req)
}

// Submit validates req, sends it through p and classifies the response.
// Errors are limited to invalid arguments, processor faults and malformed
// responses; stage failures come back as the Outcome.
func Submit(ctx context.Context, p Processor, req *Request) (Outcome, error) {
	if p == nil {
		return Outcome{}, fmt.Errorf("%w: processor is nil", faults.ErrInvalidArgument)
	}
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}

	resp, err := p.Submit(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	if err := resp.Validate(); err != nil {
		return Outcome{}, err
	}

	return Classify(req.Options, resp), nil
}
