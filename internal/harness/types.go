package harness

import "github.com/roach88/carta/internal/catalog"

// Trace event kinds.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
)

// TraceEvent is one entry of a scenario trace: a step being invoked, or the
// outcome of the step invoked just before it.
type TraceEvent struct {
	Type    string                 `json:"type"`
	Op      string                 `json:"op,omitempty"`
	Args    map[string]interface{} `json:"args,omitempty"`
	Outcome string                 `json:"outcome,omitempty"`
	Result  map[string]interface{} `json:"result,omitempty"`
	Seq     int64                  `json:"seq"`
}

// Result is what a scenario run produced.
type Result struct {
	Pass   bool             `json:"pass"`
	Trace  []TraceEvent     `json:"trace"`
	Errors []string         `json:"errors,omitempty"`
	State  catalog.Snapshot `json:"state"` // after the last step
}

// NewResult returns an empty result that passes until Fail is called.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}, Errors: []string{}}
}

// Fail records a failure message.
func (r *Result) Fail(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}

func (r *Result) invoked(op string, args map[string]interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{Type: EventInvocation, Op: op, Args: args, Seq: seq})
}

func (r *Result) completed(outcome string, out map[string]interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{Type: EventCompletion, Outcome: outcome, Result: out, Seq: seq})
}
