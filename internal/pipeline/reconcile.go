package pipeline

import "github.com/sells-group/recruit-cli/internal/model"

// Reconcile merges freshly mapped remote records with the override store.
// Pure function of its two inputs, deterministic. Remote-derived fields
// (profile, ratings, scenarios, compensation ask, availability, resume link)
// always come from the export; augmented fields come from the override blob
// when one exists for the email. The export is the authoritative membership
// list: override entries without a matching remote record are dropped from
// the result, never from the store.
func Reconcile(remote []model.Candidate, overrides map[string]model.Override) []model.Candidate {
	out := make([]model.Candidate, 0, len(remote))
	for _, c := range remote {
		ov, ok := overrides[c.Email]
		if !ok {
			out = append(out, c)
			continue
		}

		// Blobs written before the status field existed carry an empty
		// status; fall back to the remote-derived default for those.
		if ov.Status != "" {
			c.Status = ov.Status
		}
		c.IsFavorite = ov.IsFavorite
		c.Analysis = ov.Analysis
		if ov.Notes != nil {
			c.Notes = ov.Notes
		}

		// Editable fields: an explicit empty-string override counts as
		// present and wins over the remote value.
		if ov.Comments != nil {
			c.Comments = *ov.Comments
		}
		if ov.CallLog != nil {
			c.CallLog = *ov.CallLog
		}
		if ov.CurrentComp != nil {
			c.CurrentComp = *ov.CurrentComp
		}

		out = append(out, c)
	}
	return out
}
