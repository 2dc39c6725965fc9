package testutil

import (
	"net/http"

	"xcmkit/pkg/requestcontext"
)

// WithRequestID sets the request id the request middleware would assign.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithAdminSubject marks the request as authenticated by the admin guard.
func WithAdminSubject(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithAdminSubject(req.Context(), subject))
}
