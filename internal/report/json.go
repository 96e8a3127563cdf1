package report

import (
	"encoding/json"
	"io"
)

// jsonRun is the wire shape of a full report export, grouping the same four
// pieces WriteConsole prints so a host application can consume both from
// one call.
type jsonRun struct {
	RunID      string      `json:"runId"`
	Output     interface{} `json:"output"`
	Metrics    interface{} `json:"metrics"`
	Sell       interface{} `json:"sellStrategy"`
	Comparison interface{} `json:"bbdComparison"`
}

// WriteJSON marshals r as the structured export format, indented for
// readability.
func WriteJSON(w io.Writer, r *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonRun{
		RunID:      r.Output.RunID,
		Output:     r.Output,
		Metrics:    r.Metrics,
		Sell:       r.Sell,
		Comparison: r.Comparison,
	})
}
