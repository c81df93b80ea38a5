// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import "fmt"

// AuthError reports that session bootstrap could not establish a case
// identifier and access token. Recovery requires a fresh bootstrap
// attempt by the caller; nothing is retried internally.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session bootstrap failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("session bootstrap failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ServiceError carries an error the service reported inside a well-formed
// response: either the embedded error envelope of a search response or a
// fatal internal-error status on print-job submission. Code and Message
// are preserved verbatim from upstream.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("public search error #%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("public search error: %s", e.Message)
}

// ExportError reports a failed document export. State is the pipeline
// stage the failure occurred in, StatusCode the HTTP status that caused
// it (zero when the failure was not an HTTP status), and ServerText
// carries the raw server response when one was available.
type ExportError struct {
	State      ExportState
	StatusCode int
	ServerText string
	Err        error
}

func (e *ExportError) Error() string {
	msg := fmt.Sprintf("export failed in state %s", e.State)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.ServerText != "" {
		msg += ": " + e.ServerText
	}
	return msg
}

func (e *ExportError) Unwrap() error { return e.Err }
