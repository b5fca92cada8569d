package input

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/quiccfor/stmmcmc/pkg/stm/parameters"
	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

// requiredParameterColumns is the minimal header for a parameter file.
var requiredParameterColumns = []string{"name", "initialValue", "priorMean", "priorSD", "priorDist"}

const defaultSamplerVariance = 1.0

// ParameterFile is the parsed contents of one parameter CSV: an
// insertion-ordered Settings list and the prior keyed by parameter name.
type ParameterFile struct {
	Settings []parameters.Settings
	Priors   map[string]parameters.PriorDist
}

// ParseParameterFile reads and validates the parameter file at path.
func ParseParameterFile(path string) (*ParameterFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, stmerr.Wrap(stmerr.InputSchema, err, "opening parameter file %q", path)
	}
	defer f.Close()
	return ParseParameters(f)
}

// ParseParameters parses a parameter CSV from r. Required columns are
// name, initialValue, priorMean, priorSD, priorDist; samplerVariance and
// isConstant are optional and default to 1.0 and false.
func ParseParameters(r io.Reader) (*ParameterFile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, stmerr.Wrap(stmerr.InputSchema, err, "reading parameter file header")
	}
	idx, err := columnIndex(header, requiredParameterColumns)
	if err != nil {
		return nil, err
	}
	varianceCol, hasVariance := indexOf(header, "samplerVariance")
	constantCol, hasConstant := indexOf(header, "isConstant")

	out := &ParameterFile{Priors: map[string]parameters.PriorDist{}}

	row := 1
	for {
		row++
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stmerr.Wrap(stmerr.InputSchema, err, "reading parameter file row %d", row)
		}

		name := strings.TrimSpace(rec[idx["name"]])
		initial, err := parseFloat(rec[idx["initialValue"]], "initialValue", row)
		if err != nil {
			return nil, err
		}
		mean, err := parseFloat(rec[idx["priorMean"]], "priorMean", row)
		if err != nil {
			return nil, err
		}
		sd, err := parseFloat(rec[idx["priorSD"]], "priorSD", row)
		if err != nil {
			return nil, err
		}
		family, err := parameters.ParsePriorFamily(rec[idx["priorDist"]])
		if err != nil {
			return nil, stmerr.Wrap(stmerr.InputSchema, err, "row %d: priorDist", row)
		}

		variance := defaultSamplerVariance
		if hasVariance && strings.TrimSpace(rec[varianceCol]) != "" {
			v, err := parseFloat(rec[varianceCol], "samplerVariance", row)
			if err != nil {
				return nil, err
			}
			variance = v
		}
		isConstant := hasConstant && truthy(rec[constantCol])

		out.Settings = append(out.Settings, parameters.Settings{
			Name:       name,
			Initial:    initial,
			Variance:   variance,
			IsConstant: isConstant,
		})
		out.Priors[name] = parameters.PriorDist{Mean: mean, SD: sd, Family: family}
	}

	if len(out.Settings) == 0 {
		return nil, stmerr.New(stmerr.InputSchema, "parameter file has no data rows")
	}
	return out, nil
}
