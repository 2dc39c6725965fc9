package handler

import (
	"strings"

	"xcmkit/internal/directive"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

const (
	maxAssets          = 64
	maxSpecifierLength = 2048
)

// WeightLimitRequest is a weight limit in decimal strings.
type WeightLimitRequest struct {
	RefTime   string `json:"refTime"`
	ProofSize string `json:"proofSize"`
}

// OptionsRequest carries the build options.
type OptionsRequest struct {
	XcmVersion            int                 `json:"xcmVersion"`
	IsLimited             bool                `json:"isLimited"`
	WeightLimit           *WeightLimitRequest `json:"weightLimit,omitempty"`
	PayFeeWith            string              `json:"payFeeWith,omitempty"`
	KeepAlive             bool                `json:"keepAlive"`
	TransferForeignAssets bool                `json:"transferForeignAssets"`
	AmountKind            string              `json:"amountKind,omitempty"`
}

// BuildRequest is the HTTP request body for POST /v1/directives and
// POST /v1/directives/encode.
type BuildRequest struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Recipient   string         `json:"recipient"`
	Assets      []string       `json:"assets"`
	Amounts     []string       `json:"amounts"`
	Options     OptionsRequest `json:"options"`

	// Parsed values (populated by Validate)
	parsedAmountKind xcm.AmountKind
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *BuildRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.Assets) > maxAssets || len(r.Amounts) > maxAssets {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d assets may be sent at once", maxAssets)
	}
	for _, a := range r.Assets {
		if len(a) > maxSpecifierLength {
			return dErrors.Newf(dErrors.CodeValidation, "asset specifiers must be at most %d characters", maxSpecifierLength)
		}
	}

	// Required fields
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)
	r.Recipient = strings.TrimSpace(r.Recipient)
	if r.Origin == "" {
		return dErrors.New(dErrors.CodeValidation, "origin is required")
	}
	if r.Destination == "" {
		return dErrors.New(dErrors.CodeValidation, "destination is required")
	}
	if r.Recipient == "" {
		return dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	if len(r.Amounts) == 0 {
		return dErrors.New(dErrors.CodeValidation, "amounts are required")
	}

	kind, err := xcm.ParseAmountKind(r.Options.AmountKind)
	if err != nil {
		return err
	}
	r.parsedAmountKind = kind
	return nil
}

// ToDomain converts the validated request to a directive request.
func (r *BuildRequest) ToDomain() directive.Request {
	opts := directive.Options{
		Version:               r.Options.XcmVersion,
		IsLimited:             r.Options.IsLimited,
		PayFeeWith:            strings.TrimSpace(r.Options.PayFeeWith),
		KeepAlive:             r.Options.KeepAlive,
		TransferForeignAssets: r.Options.TransferForeignAssets,
		AmountKind:            r.parsedAmountKind,
	}
	if w := r.Options.WeightLimit; w != nil {
		opts.WeightLimit = &directive.Weight{RefTime: w.RefTime, ProofSize: w.ProofSize}
	}
	return directive.Request{
		Origin:      r.Origin,
		Destination: r.Destination,
		Recipient:   r.Recipient,
		Assets:      r.Assets,
		Amounts:     r.Amounts,
		Options:     opts,
	}
}
