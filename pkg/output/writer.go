// Package output drains the engine's sample sink to disk or stdout: a
// posterior CSV a long sampling run keeps appending to, an overwritten
// checkpoint file, and a DIC summary file.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quiccfor/stmmcmc/pkg/reporting"
	"github.com/quiccfor/stmmcmc/pkg/sink"
	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

// Kind names where posterior samples go: Stdout prints each row, CSV
// appends to a posterior.csv file under the output directory.
type Kind int

const (
	Stdout Kind = iota
	CSV
)

// ParseKind maps a CLI/config string onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "stdout", "":
		return Stdout, nil
	case "csv":
		return CSV, nil
	default:
		return 0, stmerr.New(stmerr.InvalidConfig, "unknown sink kind %q", s)
	}
}

// Writer drains a sink.Sink until it closes, routing each record to the
// configured destination.
type Writer struct {
	dir    string
	kind   Kind
	logger *reporting.Logger

	csvFile   *os.File
	csvWriter *csv.Writer
	wroteCSV  bool
}

// New creates a Writer rooted at dir (created if missing).
func New(dir string, kind Kind, logger *reporting.Logger) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, stmerr.Wrap(stmerr.InvalidConfig, err, "creating output directory %q", dir)
	}
	return &Writer{dir: dir, kind: kind, logger: logger}, nil
}

// Drain pops records off snk until it reports closed, writing each to
// its destination. It returns once the sink is closed and drained.
func (w *Writer) Drain(snk *sink.Sink) error {
	defer w.closeCSV()
	for {
		rec, ok := snk.Pop()
		if !ok {
			return nil
		}
		if err := w.handle(rec); err != nil {
			if w.logger != nil {
				w.logger.Warn("failed to write sink record", "kind", rec.Kind.String(), "error", err)
			}
		}
	}
}

func (w *Writer) handle(rec sink.Record) error {
	switch rec.Kind {
	case sink.Posterior:
		return w.writePosterior(rec)
	case sink.ResumeData:
		return w.writeCheckpoint(rec)
	case sink.DIC:
		return w.writeDIC(rec)
	default:
		return stmerr.New(stmerr.InvalidConfig, "unknown record kind %d", rec.Kind)
	}
}

func (w *Writer) writePosterior(rec sink.Record) error {
	switch w.kind {
	case Stdout:
		for _, row := range rec.Batch {
			fmt.Print(formatRow(rec.Names, row))
		}
		return nil
	case CSV:
		return w.appendCSV(rec)
	default:
		return stmerr.New(stmerr.InvalidConfig, "unknown sink kind %d", w.kind)
	}
}

func formatRow(names []string, row map[string]float64) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ","
		}
		s += strconv.FormatFloat(row[n], 'g', -1, 64)
	}
	return s + "\n"
}

func (w *Writer) appendCSV(rec sink.Record) error {
	if w.csvWriter == nil {
		f, err := os.OpenFile(filepath.Join(w.dir, "posterior.csv"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return stmerr.Wrap(stmerr.InvalidConfig, err, "opening posterior.csv")
		}
		w.csvFile = f
		w.csvWriter = csv.NewWriter(f)
	}
	if !w.wroteCSV {
		if err := w.csvWriter.Write(rec.Names); err != nil {
			return err
		}
		w.wroteCSV = true
	}
	for _, row := range rec.Batch {
		fields := make([]string, len(rec.Names))
		for i, n := range rec.Names {
			fields[i] = strconv.FormatFloat(row[n], 'g', -1, 64)
		}
		if err := w.csvWriter.Write(fields); err != nil {
			return err
		}
	}
	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

func (w *Writer) closeCSV() {
	if w.csvWriter != nil {
		w.csvWriter.Flush()
	}
	if w.csvFile != nil {
		w.csvFile.Close()
	}
}

func (w *Writer) writeCheckpoint(rec sink.Record) error {
	path := filepath.Join(w.dir, "checkpoint.resume")
	if err := os.WriteFile(path, []byte(rec.Payload), 0o644); err != nil {
		return stmerr.Wrap(stmerr.InvalidConfig, err, "writing checkpoint file")
	}
	if w.logger != nil {
		w.logger.Info("checkpoint written", "path", path)
	}
	return nil
}

func (w *Writer) writeDIC(rec sink.Record) error {
	path := filepath.Join(w.dir, "dic.txt")
	if err := os.WriteFile(path, []byte(rec.Payload), 0o644); err != nil {
		return stmerr.Wrap(stmerr.InvalidConfig, err, "writing DIC summary")
	}
	return nil
}
