package handler

import (
	"encoding/json"
	"strings"

	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

// CacheForeignAssetRequest is the body of POST /admin/registry/foreign-assets.
type CacheForeignAssetRequest struct {
	SpecName string          `json:"specName"`
	Symbol   string          `json:"symbol"`
	Location json.RawMessage `json:"location"`

	parsedLocation xcm.Location
}

// Validate validates and parses the request.
func (r *CacheForeignAssetRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.SpecName = strings.TrimSpace(r.SpecName)
	r.Symbol = strings.TrimSpace(r.Symbol)
	if r.SpecName == "" {
		return dErrors.New(dErrors.CodeValidation, "specName is required")
	}
	if len(r.Symbol) > 32 {
		return dErrors.New(dErrors.CodeValidation, "symbol must be at most 32 characters")
	}
	if len(r.Location) == 0 {
		return dErrors.New(dErrors.CodeValidation, "location is required")
	}
	loc, err := xcm.ParseLocation(r.Location)
	if err != nil {
		return err
	}
	if loc.IsHere() {
		return dErrors.New(dErrors.CodeInvalidLocation, "foreign assets cannot be located at Here")
	}
	r.parsedLocation = loc
	return nil
}

// ParsedLocation returns the validated location.
func (r *CacheForeignAssetRequest) ParsedLocation() xcm.Location {
	return r.parsedLocation
}
