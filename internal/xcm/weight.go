package xcm

import (
	"strconv"

	dErrors "xcmkit/pkg/domain-errors"
)

// WeightLimit caps execution weight on the destination.
type WeightLimit struct {
	Limited   bool
	RefTime   uint64
	ProofSize uint64
}

// Unlimited returns the uncapped weight limit.
func Unlimited() WeightLimit {
	return WeightLimit{}
}

// Limited returns a capped weight limit.
func Limited(refTime, proofSize uint64) WeightLimit {
	return WeightLimit{Limited: true, RefTime: refTime, ProofSize: proofSize}
}

// ParseWeight parses decimal refTime and proofSize values.
func ParseWeight(refTime, proofSize string) (WeightLimit, error) {
	rt, err := strconv.ParseUint(refTime, 10, 64)
	if err != nil {
		return WeightLimit{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid weight refTime %q", refTime)
	}
	ps, err := strconv.ParseUint(proofSize, 10, 64)
	if err != nil {
		return WeightLimit{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid weight proofSize %q", proofSize)
	}
	return Limited(rt, ps), nil
}

func renderWeightLimit(v Version, w WeightLimit) any {
	if !w.Limited {
		return "Unlimited"
	}
	if v == V2 {
		return map[string]any{"Limited": strconv.FormatUint(w.RefTime, 10)}
	}
	return map[string]any{"Limited": map[string]any{
		"refTime":   strconv.FormatUint(w.RefTime, 10),
		"proofSize": strconv.FormatUint(w.ProofSize, 10),
	}}
}
