package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies which stage of the pipeline produced an error
type Kind string

const (
	KindSearchFailed            Kind = "search_failed"
	KindProbeFailed             Kind = "probe_failed"
	KindTransferFailed          Kind = "transfer_failed"
	KindDirectoryCreationFailed Kind = "directory_creation_failed"
)

// Error is a pipeline error carrying the failing stage and, for media
// errors, the post URL being processed
type Error struct {
	Kind    Kind
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.URL != "" {
		msg += fmt.Sprintf(" (%s)", e.URL)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// SearchFailed wraps a failed or unparseable search call
func SearchFailed(message string, cause error) *Error {
	return &Error{Kind: KindSearchFailed, Message: message, Cause: cause}
}

// ProbeFailed wraps a metadata resolution failure for a single post
func ProbeFailed(url string, cause error) *Error {
	return &Error{Kind: KindProbeFailed, URL: url, Cause: cause}
}

// TransferFailed wraps a media download failure for a single post
func TransferFailed(url string, cause error) *Error {
	return &Error{Kind: KindTransferFailed, URL: url, Cause: cause}
}

// DirectoryCreationFailed wraps a failure to prepare the output directory
func DirectoryCreationFailed(dir string, cause error) *Error {
	return &Error{Kind: KindDirectoryCreationFailed, Message: dir, Cause: cause}
}

// IsKind reports whether err, or any error it wraps, is a pipeline error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsFatal reports whether the error should abort the whole run rather than a single item
func IsFatal(err error) bool {
	return IsKind(err, KindSearchFailed) || IsKind(err, KindDirectoryCreationFailed)
}
