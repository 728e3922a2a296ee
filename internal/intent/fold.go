package intent

// Fold rebuilds intents from a customer's activity log, which must be in
// append order. A created activity seeds the intent; each updated activity
// for the same id becomes a milestone; the last activity carrying a status
// sets Status and UpdatedAt. Updates with no preceding created are ignored.
// Intents are returned in creation order.
func Fold(activities []Activity) []Intent {
	index := make(map[string]int)
	var out []Intent

	for _, a := range activities {
		switch a.Kind {
		case KindCreated:
			if _, seen := index[a.IntentID]; seen {
				continue
			}
			in := Intent{
				ID:         a.IntentID,
				IntentType: a.Payload.IntentType,
				Context:    a.Payload.Context,
				Status:     StatusCreated,
				Milestones: []Milestone{},
				CreatedAt:  a.CreatedAt,
				UpdatedAt:  a.CreatedAt,
			}
			if a.Status != nil {
				in.Status = *a.Status
			}
			index[a.IntentID] = len(out)
			out = append(out, in)

		case KindUpdated:
			i, ok := index[a.IntentID]
			if !ok {
				continue
			}
			m := Milestone{
				Milestone: a.Payload.Milestone,
				Data:      a.Payload.Data,
				OrderID:   a.Payload.OrderID,
				At:        a.CreatedAt,
			}
			if a.Status != nil {
				m.Status = *a.Status
				out[i].Status = *a.Status
				out[i].UpdatedAt = a.CreatedAt
			}
			out[i].Milestones = append(out[i].Milestones, m)
		}
	}
	return out
}
