package api

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// APIVersion is the wire protocol version spoken by this build. Servers
// and clients are compatible when the major versions match.
const APIVersion = "v1.0.0"

// Error codes carried in ErrorResponse.
const (
	CodeNotFound   = "not_found"
	CodeBadRequest = "bad_request"
	CodeInternal   = "internal"
)

// VerifyRequest is the body of POST /api/exercises/{id}/verify.
type VerifyRequest struct {
	Answer string `json:"answer"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	APIVersion string `json:"apiVersion"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// ErrIncompatible is returned by CheckCompatible.
var ErrIncompatible = errors.New("incompatible server API version")

// CheckCompatible reports whether a server speaking serverVersion can be
// used by this client.
func CheckCompatible(serverVersion string) error {
	if !semver.IsValid(serverVersion) {
		return fmt.Errorf("%w: invalid version %q", ErrIncompatible, serverVersion)
	}
	if semver.Major(serverVersion) != semver.Major(APIVersion) {
		return fmt.Errorf("%w: server %s, client %s", ErrIncompatible, serverVersion, APIVersion)
	}
	return nil
}
