package reporting

import "fmt"

// AcceptanceRow is one line of an adaptation progress table: a single
// active parameter's current proposal variance, observed acceptance
// rate, and whether that rate has settled inside the target interval.
type AcceptanceRow struct {
	Name       string
	Variance   float64
	Acceptance float64
	Adapted    bool
}

// DICSummary carries the four numbers the deviance information criterion
// computation produces.
type DICSummary struct {
	PD             float64
	MeanDeviance   float64
	DevianceOfMean float64
	DIC            float64
}

// FormatDIC renders the four-line DIC summary pushed to the sink as a
// DIC-kind record, and printed at Normal verbosity and above.
func FormatDIC(d DICSummary) string {
	return fmt.Sprintf(
		"pD: %g\nMean deviance (d-bar): %g\nDeviance of mean (d(theta-bar)): %g\nDIC: %g\n",
		d.PD, d.MeanDeviance, d.DevianceOfMean, d.DIC,
	)
}
