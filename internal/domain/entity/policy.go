package entity

type PolicyStatus string

const (
	PolicyInProgress PolicyStatus = "in_progress"
	PolicyReproduced PolicyStatus = "reproduced"
	PolicyFailed     PolicyStatus = "failed"
)

func (s PolicyStatus) Valid() bool {
	switch s {
	case PolicyInProgress, PolicyReproduced, PolicyFailed:
		return true
	}
	return false
}

func (s PolicyStatus) Terminal() bool {
	return s == PolicyReproduced || s == PolicyFailed
}

type PolicyResponse struct {
	Thought string       `json:"thought"`
	Action  Action       `json:"action"`
	Status  PolicyStatus `json:"status"`
	Reason  string       `json:"reason,omitempty"`
}
