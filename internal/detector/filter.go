package detector

// MinCandidateSize is the smallest group worth classifying.
const MinCandidateSize = 2

// FilterCandidates keeps the groups that could be recurring charges. Only
// the group size is checked; amount and cadence are left to the classifier.
func FilterCandidates(groups []MerchantGroup) []MerchantGroup {
	var out []MerchantGroup
	for _, g := range groups {
		if len(g.Transactions) >= MinCandidateSize {
			out = append(out, g)
		}
	}
	return out
}
