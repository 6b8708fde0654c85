// Package apperrors defines the error taxonomy shared by the analysis
// pipeline and the HTTP layer. Every failure the service can produce is
// classified by a Kind; the Kind decides the HTTP status and the Detail
// string is the only part a client ever sees.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnsupportedFormat
	KindExtraction
	KindInsufficientContent
	KindConfiguration
	KindAIInvocation
	KindResponseParse
	KindResponseSchema
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindUnsupportedFormat:   "unsupported_format",
	KindExtraction:          "extraction",
	KindInsufficientContent: "insufficient_content",
	KindConfiguration:       "configuration",
	KindAIInvocation:        "ai_invocation",
	KindResponseParse:       "response_parse",
	KindResponseSchema:      "response_schema",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "internal"
}

// Error carries a classified failure. Detail is the user-facing message;
// Err is the underlying cause, kept for logs only.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf classifies any error; errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Detail returns the user-facing message for err. Uncategorized errors get
// a generic message so internals never leak into responses.
func Detail(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return "Internal server error"
}

// HTTPStatus maps an error to its response status: caller-fixable kinds are
// 400, configuration and upstream failures are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindUnsupportedFormat, KindExtraction, KindInsufficientContent:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
