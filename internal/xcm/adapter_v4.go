package xcm

// v4Adapter renders every interior as a junction list and asset ids without
// the Concrete wrapper.
type v4Adapter struct{ shared }

func (a v4Adapter) Beneficiary(accountID string) (Location, error) {
	return a.beneficiary(accountID, nil)
}
