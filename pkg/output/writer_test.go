package output_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quiccfor/stmmcmc/pkg/output"
	"github.com/quiccfor/stmmcmc/pkg/sink"
)

func TestDrainWritesPosteriorCSV(t *testing.T) {
	dir := t.TempDir()
	w, err := output.New(dir, output.CSV, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s := sink.New()
	s.Push(sink.Record{
		Kind:  sink.Posterior,
		Names: []string{"g0", "e0"},
		Batch: []map[string]float64{{"g0": 1.5, "e0": -2}},
	})
	s.Push(sink.Record{Kind: sink.DIC, Payload: "DIC 12.5\n"})
	s.Close()

	if err := w.Drain(s); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "posterior.csv"))
	if err != nil {
		t.Fatalf("reading posterior.csv: %v", err)
	}
	if !strings.Contains(string(data), "g0,e0") || !strings.Contains(string(data), "1.5,-2") {
		t.Fatalf("unexpected posterior.csv contents: %q", data)
	}

	dic, err := os.ReadFile(filepath.Join(dir, "dic.txt"))
	if err != nil {
		t.Fatalf("reading dic.txt: %v", err)
	}
	if string(dic) != "DIC 12.5\n" {
		t.Fatalf("unexpected dic.txt contents: %q", dic)
	}
}

func TestDrainWritesCheckpoint(t *testing.T) {
	dir := t.TempDir()
	w, err := output.New(dir, output.Stdout, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s := sink.New()
	s.Push(sink.Record{Kind: sink.ResumeData, Payload: "Metropolis {\nversion Metropolis1.5\n}\n"})
	s.Close()

	if err := w.Drain(s); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "checkpoint.resume"))
	if err != nil {
		t.Fatalf("reading checkpoint.resume: %v", err)
	}
	if !strings.Contains(string(data), "Metropolis1.5") {
		t.Fatalf("unexpected checkpoint contents: %q", data)
	}
}
