package xcm

// v2Adapter tags substrate accounts with network Any, wraps asset ids under
// Concrete and has no GlobalConsensus junction.
type v2Adapter struct{ shared }

func (a v2Adapter) Beneficiary(accountID string) (Location, error) {
	return a.beneficiary(accountID, &NetworkID{Kind: NetworkAny})
}
