package xcm

// v5Adapter shares the V4 shapes; Westend, Rococo and Wococo network ids are
// no longer representable.
type v5Adapter struct{ shared }

func (a v5Adapter) Beneficiary(accountID string) (Location, error) {
	return a.beneficiary(accountID, nil)
}
