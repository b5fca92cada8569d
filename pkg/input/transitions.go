package input

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/quiccfor/stmmcmc/pkg/stm/model"
	"github.com/quiccfor/stmmcmc/pkg/stm/state"
	"github.com/quiccfor/stmmcmc/pkg/stm/transition"
	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

var requiredTransitionColumns = []string{"initial", "final", "env1", "env2", "interval"}

// ParseTransitionFile reads and validates the transition file at path
// against registry's alphabet.
func ParseTransitionFile(path string, registry model.Registry, prevalence transition.PrevalenceModel) ([]*transition.Transition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, stmerr.Wrap(stmerr.InputSchema, err, "opening transition file %q", path)
	}
	defer f.Close()
	return ParseTransitions(f, registry, prevalence)
}

// ParseTransitions parses a transition CSV from r. Required columns are
// initial, final, env1, env2, interval; at least (|alphabet|-1) of the
// prevalence<StateTag> columns must be present, with the single missing
// one inferred as 1 minus the sum of the others.
func ParseTransitions(r io.Reader, registry model.Registry, prevalence transition.PrevalenceModel) ([]*transition.Transition, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, stmerr.Wrap(stmerr.InputSchema, err, "reading transition file header")
	}
	idx, err := columnIndex(header, requiredTransitionColumns)
	if err != nil {
		return nil, err
	}

	alphabet := registry.Alphabet()
	prevCols := map[state.Tag]int{}
	for _, tag := range alphabet {
		if i, ok := indexOf(header, "prevalence"+string(tag)); ok {
			prevCols[tag] = i
		}
	}
	if len(prevCols) < len(alphabet)-1 {
		return nil, stmerr.New(stmerr.InputSchema,
			"transition file needs at least %d prevalence<State> column(s) for the %s alphabet; expected header containing: %s, prevalence<State>...",
			len(alphabet)-1, registry.Variant(), strings.Join(requiredTransitionColumns, ", "))
	}

	var out []*transition.Transition
	row := 1
	for {
		row++
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stmerr.Wrap(stmerr.InputSchema, err, "reading transition file row %d", row)
		}

		initialField := strings.TrimSpace(rec[idx["initial"]])
		finalField := strings.TrimSpace(rec[idx["final"]])
		if len(initialField) != 1 || len(finalField) != 1 {
			return nil, stmerr.New(stmerr.InputSchema, "row %d: initial/final must be single characters", row)
		}
		initial := state.Tag(initialField[0])
		final := state.Tag(finalField[0])

		env1, err := parseFloat(rec[idx["env1"]], "env1", row)
		if err != nil {
			return nil, err
		}
		env2, err := parseFloat(rec[idx["env2"]], "env2", row)
		if err != nil {
			return nil, err
		}
		interval, err := strconv.Atoi(strings.TrimSpace(rec[idx["interval"]]))
		if err != nil {
			return nil, stmerr.Wrap(stmerr.InputSchema, err, "row %d: interval is not an integer", row)
		}

		expected := map[state.Tag]float64{}
		sum := 0.0
		missing := state.Tag(0)
		haveMissing := false
		for _, tag := range alphabet {
			if col, ok := prevCols[tag]; ok {
				v, err := parseFloat(rec[col], "prevalence"+string(tag), row)
				if err != nil {
					return nil, err
				}
				expected[tag] = v
				sum += v
			} else {
				missing = tag
				haveMissing = true
			}
		}
		if haveMissing {
			expected[missing] = 1 - sum
		}

		t, err := transition.New(registry, initial, final, env1, env2, interval, expected, prevalence)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil, stmerr.New(stmerr.InputSchema, "transition file has no data rows")
	}
	return out, nil
}
