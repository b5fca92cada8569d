// Package input parses the two fixed-schema CSV files consumed at
// startup (the parameter file and the transition file) plus the
// braced-block resume/checkpoint file format. A schema hint accompanies
// every missing-column error.
package input

import (
	"strconv"
	"strings"

	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

// columnIndex resolves each required column name to its position in
// header, failing with InputSchema (and a schema hint) if any are
// missing.
func columnIndex(header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, stmerr.New(stmerr.InputSchema,
			"missing required column(s) %s; expected header containing: %s",
			strings.Join(missing, ", "), strings.Join(required, ", "))
	}
	return idx, nil
}

// indexOf returns the position of an optional column, if present.
func indexOf(header []string, name string) (int, bool) {
	for i, col := range header {
		if strings.TrimSpace(col) == name {
			return i, true
		}
	}
	return 0, false
}

func parseFloat(field, column string, row int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, stmerr.Wrap(stmerr.InputSchema, err, "row %d: column %q is not a number", row, column)
	}
	return v, nil
}

func truthy(field string) bool {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "1", "true", "t", "yes", "y":
		return true
	default:
		return false
	}
}
