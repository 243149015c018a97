package engine

import (
	"github.com/rotisserie/eris"

	"github.com/bankiq/bankiq-cli/internal/resilience"
	"github.com/bankiq/bankiq-cli/internal/resolve"
	"github.com/bankiq/bankiq-cli/internal/store"
)

// Sentinel failure categories. Operations never leak raw error chains; they
// classify into one of these and report a message in the response envelope.
var (
	ErrNotFound            = eris.New("engine: not found")
	ErrUpstreamUnavailable = eris.New("engine: upstream unavailable")
	ErrMalformedData       = eris.New("engine: malformed upstream data")
)

// Failure codes carried in Response.Code.
const (
	CodeNotFound  = "not_found"
	CodeUpstream  = "upstream_unavailable"
	CodeMalformed = "malformed_data"
	CodeInvalid   = "invalid_request"
	CodeInternal  = "internal"
)

// classify buckets an internal error into a failure code.
func classify(err error) string {
	switch {
	case err == nil:
		return ""
	case eris.Is(err, resolve.ErrNotFound),
		eris.Is(err, store.ErrDatasetNotFound),
		eris.Is(err, ErrNotFound):
		return CodeNotFound
	case eris.Is(err, resilience.ErrBreakerOpen),
		eris.Is(err, ErrUpstreamUnavailable),
		resilience.IsTransient(err):
		return CodeUpstream
	case eris.Is(err, ErrMalformedData):
		return CodeMalformed
	default:
		return CodeInternal
	}
}
