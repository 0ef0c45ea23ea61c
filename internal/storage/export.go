package storage

import (
	"github.com/san-kum/phaseportrait/internal/dynamo"
)

type ExportData struct {
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Rejected   int                `json:"rejected"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a single trajectory as one JSON document.
func ExportJSON(path, integrator string, result *dynamo.Result) error {
	data := ExportData{
		Integrator: integrator,
		Steps:      result.StepsTaken,
		Rejected:   result.Rejected,
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Metrics:    result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}

	return writeJSON(path, data)
}
