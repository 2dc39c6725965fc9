package xcm

import (
	"cmp"
	"slices"
	"strings"
)

// SortAssets returns a copy of assets in canonical order: parents, then
// interior arity, then junction by junction, then amount. The input is not
// modified and any permutation of the same assets sorts identically.
func SortAssets(assets []Asset) []Asset {
	out := slices.Clone(assets)
	slices.SortStableFunc(out, compareAssets)
	return out
}

// DedupeAssets drops each asset whose canonical form equals the preceding
// kept asset. Callers sort first.
func DedupeAssets(assets []Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	last := ""
	for i, a := range assets {
		key := a.Canonical()
		if i > 0 && key == last {
			continue
		}
		out = append(out, a)
		last = key
	}
	return out
}

// CanonicalizeAssets sorts then de-duplicates. The result is idempotent.
func CanonicalizeAssets(assets []Asset) []Asset {
	return DedupeAssets(SortAssets(assets))
}

// CompareLocations orders locations by parents, arity, then junctions.
func CompareLocations(a, b Location) int {
	if c := cmp.Compare(a.Parents, b.Parents); c != 0 {
		return c
	}
	if c := cmp.Compare(len(a.Interior), len(b.Interior)); c != 0 {
		return c
	}
	for i := range a.Interior {
		if c := compareJunctions(a.Interior[i], b.Interior[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareAssets(a, b Asset) int {
	if c := CompareLocations(a.ID, b.ID); c != 0 {
		return c
	}
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c
	}
	return cmp.Compare(a.Kind, b.Kind)
}

func compareJunctions(a, b Junction) int {
	if a.Kind() != b.Kind() {
		return cmp.Compare(a.Kind(), b.Kind())
	}
	an, aok := a.numeric()
	bn, bok := b.numeric()
	if aok && bok {
		if c := an.Cmp(&bn); c != 0 {
			return c
		}
	}
	return strings.Compare(junctionKey(a), junctionKey(b))
}
