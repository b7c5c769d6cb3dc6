package driver

import (
	"encoding/json"
	"fmt"

	"frkernel/internal/diag"
	"frkernel/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic records report as an info diagnostic whose note
// carries the JSON payload. It always fits, growing the bag if needed.
func appendTimingDiagnostic(bag *diag.Bag, report observ.Report) {
	payload := timingPayload{Kind: "declarations", TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, -1, "",
		fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)).
		WithNote("", string(data))
	if bag.Add(d) {
		return
	}
	overflow := diag.NewBag(0)
	overflow.Add(d)
	bag.Merge(overflow)
}
