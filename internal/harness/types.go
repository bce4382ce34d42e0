package harness

import "github.com/askwave/askwave/internal/hub"

// TraceEvent is one recorded notification delivery.
type TraceEvent struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected.
	Pass bool `json:"pass"`

	// Trace contains every notification in delivery order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists step failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}}
}

// AddError records a step failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// recorder captures notifications instead of delivering them. It
// implements the dispatcher's Notifier.
type recorder struct {
	events []TraceEvent
}

func (rec *recorder) Notify(groupName string, n hub.Notification) {
	rec.events = append(rec.events, TraceEvent{
		Group:   groupName,
		Name:    n.Name,
		Payload: n.Payload,
	})
}
