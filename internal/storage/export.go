package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/ripple/internal/sim"
)

type ExportData struct {
	Meta     *RunMetadata       `json:"meta,omitempty"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Frames   [][]float64        `json:"frames"`
	Volumes  []float64          `json:"volumes"`
	Energies []float64          `json:"energies"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes the recorded frames and metrics. meta may be nil.
func ExportJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	data := ExportData{
		Meta:     meta,
		Steps:    result.StepsTaken,
		Times:    result.Times,
		Frames:   make([][]float64, len(result.Frames)),
		Volumes:  result.Volumes,
		Energies: result.Energies,
		Metrics:  result.Metrics,
	}
	for i, fr := range result.Frames {
		data.Frames[i] = fr
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes one row per recorded frame: time, then every height.
func ExportCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if len(result.Frames) == 0 {
		cw.Flush()
		return cw.Error()
	}

	header := []string{"time"}
	for i := range result.Frames[0] {
		header = append(header, fmt.Sprintf("h%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, fr := range result.Frames {
		t := 0.0
		if i < len(result.Times) {
			t = result.Times[i]
		}
		row := make([]string, 0, len(fr)+1)
		row = append(row, strconv.FormatFloat(t, 'f', 6, 64))
		for _, h := range fr {
			row = append(row, strconv.FormatFloat(h, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ResultFromFrames rebuilds enough of a result for export from a stored run.
func ResultFromFrames(frames [][]float64, times, volumes, energies []float64, metrics map[string]float64) *sim.Result {
	r := &sim.Result{
		Times:    times,
		Volumes:  volumes,
		Energies: energies,
		Metrics:  metrics,
	}
	for _, fr := range frames {
		r.Frames = append(r.Frames, fr)
	}
	if len(volumes) > 0 {
		r.StepsTaken = len(volumes) - 1
	}
	return r
}
