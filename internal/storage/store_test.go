package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Frames:     []dynamo.Heights{{300, 300, 300}, {299.5, 300.25, 300.25}},
		Times:      []float64{0, 0.016667},
		Volumes:    []float64{900, 900},
		Energies:   []float64{0, 0.125},
		Metrics:    map[string]float64{"peak": 0.5},
		StepsTaken: 1,
		Errors:     []error{errors.New("boom")},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, _ := config.GetPreset("ripple")
	cfg.Samples = 3
	runID, err := st.Save(cfg, "drop", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "ripple_") {
		t.Errorf("expected ripple_ prefix, got %s", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "drop" || meta.StepsTaken != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Config.Params.Spread != cfg.Params.Spread || meta.Config.Timeout != cfg.Timeout {
		t.Errorf("config did not round trip: %+v", meta.Config)
	}
	if meta.Metrics["peak"] != 0.5 {
		t.Errorf("expected peak 0.5, got %v", meta.Metrics["peak"])
	}
	if len(meta.Errors) != 1 || meta.Errors[0] != "boom" {
		t.Errorf("expected recorded error, got %v", meta.Errors)
	}

	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1][0] != 299.5 || frames[1][2] != 300.25 {
		t.Errorf("unexpected frame %v", frames[1])
	}

	volumes, energies, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(volumes) != 2 || energies[1] != 0.125 {
		t.Errorf("unexpected series %v %v", volumes, energies)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v %v", runs, err)
	}

	cfg := config.DefaultConfig()
	for i := 0; i < 2; i++ {
		if _, err := st.Save(cfg, "", testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	// junk that List must skip
	os.MkdirAll(filepath.Join(dir, "broken"), 0755)
	os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "custom" {
		t.Errorf("expected unnamed config to save as custom, got %s", runs[0].Name)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, _, err := st.LoadFrames("nope"); err == nil {
		t.Error("expected error for missing frames")
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID("pond"), NewRunID("pond")
	if a == b {
		t.Error("run ids should be unique")
	}
	if !strings.HasPrefix(NewRunID(""), "run_") {
		t.Error("expected run_ prefix for empty name")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, nil, testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 1 || len(data.Frames) != 2 || data.Meta != nil {
		t.Errorf("unexpected export %+v", data)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(lines))
	}
	if lines[0] != "time,h0,h1,h2" {
		t.Errorf("unexpected header %q", lines[0])
	}

	buf.Reset()
	if err := ExportCSV(&buf, &sim.Result{}); err != nil || buf.Len() != 0 {
		t.Errorf("empty result should write nothing, got %q %v", buf.String(), err)
	}
}

func TestResultFromFrames(t *testing.T) {
	r := ResultFromFrames([][]float64{{1, 2}, {3, 4}}, []float64{0, 1}, []float64{3, 7}, nil, nil)
	if len(r.Frames) != 2 || r.StepsTaken != 1 || r.Final()[1] != 4 {
		t.Errorf("unexpected result %+v", r)
	}
}
