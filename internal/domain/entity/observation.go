package entity

type Observation struct {
	DOM        []PageElement `json:"dom"`
	State      BrowserState  `json:"state"`
	Screenshot string        `json:"screenshot,omitempty"`
	StepNumber int           `json:"stepNumber"`
}

// Clickable returns up to limit clickable elements in document order.
// A non-positive limit returns all of them.
func (o Observation) Clickable(limit int) []PageElement {
	var out []PageElement
	for _, el := range o.DOM {
		if !el.Clickable {
			continue
		}
		out = append(out, el)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// RecentConsoleErrors returns the last n console errors.
func (o Observation) RecentConsoleErrors(n int) []string {
	errs := o.State.ConsoleErrors
	if n >= 0 && len(errs) > n {
		errs = errs[len(errs)-n:]
	}
	return errs
}
