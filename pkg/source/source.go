package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/observability"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// Source produces the token stream for prompt text.
type Source interface {
	// Name identifies the source in logs, hooks and cache keys.
	Name() string
	// Fetch returns the full token stream for input. Input is trimmed;
	// empty input fails with INVALID_INPUT.
	Fetch(ctx context.Context, input string) (*Result, error)
}

// Result is a fetched token stream.
type Result struct {
	ID        string                   // server-assigned id, if any
	Tokens    []trajectory.TokenVector // ordered stream
	Malformed int                      // records whose destination was unusable
	Cached    bool                     // served from a cache
}

// Request is the body of POST /api/visualize.
type Request struct {
	InputText string `json:"input_text"`
}

// Response is the body returned by POST /api/visualize.
type Response struct {
	ID     string              `json:"id,omitempty"`
	Tokens []trajectory.Record `json:"tokens"`
}

// Result converts the wire records to a token stream.
func (r *Response) Result() *Result {
	tokens, malformed := trajectory.FromRecords(r.Tokens)
	return &Result{ID: r.ID, Tokens: tokens, Malformed: malformed}
}

// DecodeResponse parses a visualize response. A bare JSON array of records
// is accepted as well.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err == nil {
		if resp.Tokens == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "response has no tokens field")
		}
		return &resp, nil
	}
	var records []trajectory.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode visualize response")
	}
	return &Response{Tokens: records}, nil
}

// observe reports a fetch to the registered source hooks.
func observe(ctx context.Context, name, input string, fetch func() (*Result, error)) (*Result, error) {
	hooks := observability.Source()
	hooks.OnFetchStart(ctx, name, input)
	start := time.Now()
	res, err := fetch()
	var tokens, malformed int
	if res != nil {
		tokens, malformed = len(res.Tokens), res.Malformed
	}
	hooks.OnFetchComplete(ctx, name, tokens, malformed, time.Since(start), err)
	return res, err
}
