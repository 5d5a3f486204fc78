package entity

// History is the append-only record of what was seen and attempted during a
// run. It is owned by the orchestrator; the policy only receives snapshots.
type History struct {
	observations []Observation
	actions      []Action
}

// HistoryView is a read-only copy of a History.
type HistoryView struct {
	Observations []Observation
	Actions      []Action
}

func (h *History) AddObservation(o Observation) {
	h.observations = append(h.observations, o)
}

func (h *History) AddAction(a Action) {
	h.actions = append(h.actions, a)
}

func (h *History) Len() int {
	return len(h.observations)
}

func (h *History) Snapshot() HistoryView {
	return HistoryView{
		Observations: append([]Observation(nil), h.observations...),
		Actions:      append([]Action(nil), h.actions...),
	}
}

// RecentActions returns the last n actions, oldest first.
func (v HistoryView) RecentActions(n int) []Action {
	if n >= 0 && len(v.Actions) > n {
		return v.Actions[len(v.Actions)-n:]
	}
	return v.Actions
}
