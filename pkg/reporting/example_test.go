package reporting_test

import (
	"bytes"
	"fmt"

	"github.com/quiccfor/stmmcmc/pkg/reporting"
)

func Example() {
	var buf bytes.Buffer
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevelInfo,
		Format: reporting.LogFormatJSON,
		Output: &buf,
	})
	logger.Info("sampler starting", "parameters", 2)

	progress := reporting.NewProgressReporter(reporting.Normal, logger)
	progress.Phase("FreshStart", "Adaptation")
	progress.DIC(reporting.DICSummary{PD: 2.1, MeanDeviance: 10.4, DevianceOfMean: 8.3, DIC: 12.5})

	fmt.Println(buf.Len() > 0)
	// Output:
	// [PHASE] FreshStart -> Adaptation
	// pD: 2.1
	// Mean deviance (d-bar): 10.4
	// Deviance of mean (d(theta-bar)): 8.3
	// DIC: 12.5
	// true
}
