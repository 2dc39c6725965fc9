package handler

import (
	"encoding/hex"

	"xcmkit/internal/directive"
)

// EncodeResponse is the HTTP response for POST /v1/directives/encode.
type EncodeResponse struct {
	Directive *directive.Rendered `json:"directive"`
	CallArgs  string              `json:"callArgs"`
}

// ClassifyResponse is the HTTP response for GET /v1/directions.
type ClassifyResponse struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Direction   string `json:"direction"`
	Kind        string `json:"kind"`
	Enabled     bool   `json:"enabled"`
	Reason      string `json:"reason,omitempty"`
}

// FromEncoded converts an encoded directive to an HTTP response.
func FromEncoded(rendered *directive.Rendered, callArgs []byte) *EncodeResponse {
	return &EncodeResponse{
		Directive: rendered,
		CallArgs:  "0x" + hex.EncodeToString(callArgs),
	}
}

// FromClassification converts a classification to an HTTP response.
func FromClassification(c *directive.Classification) *ClassifyResponse {
	return &ClassifyResponse{
		Origin:      c.Origin,
		Destination: c.Destination,
		Direction:   c.Direction.String(),
		Kind:        string(c.Kind),
		Enabled:     c.Enabled,
		Reason:      c.Reason,
	}
}
