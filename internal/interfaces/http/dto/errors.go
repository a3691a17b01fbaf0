package dto

import "net/http"

// Error codes returned in API responses.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Caller error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Question and reply error codes
const (
	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeQnaClosed            = "ERR_QNA_ALREADY_CLOSED"
	ErrCodeQnaNotRepliable      = "ERR_QNA_NOT_REPLIABLE"
	ErrCodeImageLimit           = "ERR_QNA_IMAGE_LIMIT_EXCEEDED"
	ErrCodeProductQnaImages     = "ERR_PRODUCT_QNA_CANNOT_HAVE_IMAGES"
	ErrCodeReplyDeleted         = "ERR_REPLY_DELETED"
	ErrCodeReplyParentMismatch  = "ERR_REPLY_PARENT_MISMATCH"
	ErrCodeReplyPathMismatch    = "ERR_REPLY_PATH_MISMATCH"
	ErrCodeReplyDepthExceeded   = "ERR_REPLY_DEPTH_EXCEEDED"
	ErrCodeReplyPathFormat      = "ERR_REPLY_PATH_FORMAT"
	ErrCodeReplyPathOverflow    = "ERR_REPLY_PATH_OVERFLOW"
	ErrCodeReplyPathConflict    = "ERR_REPLY_PATH_CONFLICT"
	ErrCodeAllocationExhausted  = "ERR_REPLY_ALLOCATION_EXHAUSTED"
	ErrCodeReplyScopeBusy       = "ERR_REPLY_SCOPE_BUSY"
	ErrCodeInvalidQnaType       = "ERR_INVALID_QNA_TYPE"
	ErrCodeInvalidQnaDetailType = "ERR_INVALID_QNA_DETAIL_TYPE"
	ErrCodeInvalidContent       = "ERR_INVALID_CONTENT"
	ErrCodeInvalidWriter        = "ERR_INVALID_WRITER"
	ErrCodeInvalidImage         = "ERR_INVALID_QNA_IMAGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// malformed input -> 400
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,
	ErrCodeReplyPathFormat:      http.StatusBadRequest,
	ErrCodeInvalidQnaType:       http.StatusBadRequest,
	ErrCodeInvalidQnaDetailType: http.StatusBadRequest,
	ErrCodeInvalidContent:       http.StatusBadRequest,
	ErrCodeInvalidWriter:        http.StatusBadRequest,
	ErrCodeInvalidImage:         http.StatusBadRequest,
	ErrCodeTooLarge:             http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeReplyPathConflict:   http.StatusConflict,

	// business rules -> 422
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeQnaClosed:           http.StatusUnprocessableEntity,
	ErrCodeQnaNotRepliable:     http.StatusUnprocessableEntity,
	ErrCodeImageLimit:          http.StatusUnprocessableEntity,
	ErrCodeProductQnaImages:    http.StatusUnprocessableEntity,
	ErrCodeReplyDeleted:        http.StatusUnprocessableEntity,
	ErrCodeReplyParentMismatch: http.StatusUnprocessableEntity,
	ErrCodeReplyPathMismatch:   http.StatusUnprocessableEntity,
	ErrCodeReplyDepthExceeded:  http.StatusUnprocessableEntity,
	ErrCodeReplyPathOverflow:   http.StatusUnprocessableEntity,

	// transient contention, the client may retry
	ErrCodeAllocationExhausted: http.StatusServiceUnavailable,
	ErrCodeReplyScopeBusy:      http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for code, or 500 when code is unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                      ErrCodeNotFound,
	"ALREADY_EXISTS":                 ErrCodeAlreadyExists,
	"INVALID_INPUT":                  ErrCodeInvalidInput,
	"INVALID_STATE":                  ErrCodeInvalidState,
	"FORBIDDEN":                      ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":           ErrCodeConcurrencyConflict,
	"QNA_ALREADY_CLOSED":             ErrCodeQnaClosed,
	"QNA_NOT_REPLIABLE":              ErrCodeQnaNotRepliable,
	"QNA_IMAGE_LIMIT_EXCEEDED":       ErrCodeImageLimit,
	"PRODUCT_QNA_CANNOT_HAVE_IMAGES": ErrCodeProductQnaImages,
	"INVALID_QNA_TYPE":               ErrCodeInvalidQnaType,
	"INVALID_QNA_DETAIL_TYPE":        ErrCodeInvalidQnaDetailType,
	"INVALID_CONTENT":                ErrCodeInvalidContent,
	"INVALID_WRITER":                 ErrCodeInvalidWriter,
	"INVALID_QNA_IMAGE":              ErrCodeInvalidImage,
	"QNA_REPLY_DELETED":              ErrCodeReplyDeleted,
	"QNA_REPLY_PARENT_MISMATCH":      ErrCodeReplyParentMismatch,
	"QNA_REPLY_PATH_MISMATCH":        ErrCodeReplyPathMismatch,
	"REPLY_DEPTH_EXCEEDED":           ErrCodeReplyDepthExceeded,
	"REPLY_PATH_FORMAT":              ErrCodeReplyPathFormat,
	"REPLY_PATH_OVERFLOW":            ErrCodeReplyPathOverflow,
	"REPLY_PATH_CONFLICT":            ErrCodeReplyPathConflict,
	"REPLY_ALLOCATION_EXHAUSTED":     ErrCodeAllocationExhausted,
	"REPLY_SCOPE_BUSY":               ErrCodeReplyScopeBusy,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Codes with no mapping are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
