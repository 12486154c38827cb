package fraudcheck

import (
	"context"

	"github.com/shopspring/decimal"
)

// WindowProcessor classifies a batch in a single sequential pass.
type WindowProcessor struct {
	Policy WindowPolicy
}

// NewWindowProcessor creates a sequential WindowProcessor
func NewWindowProcessor(policy WindowPolicy) WindowProcessor {
	return WindowProcessor{
		Policy: policy,
	}
}

// Classify walks the batch once. A flagged postcode is never looked at again. O(N * W) where W is
// the number of open windows per postcode.
func (p WindowProcessor) Classify(_ context.Context, threshold decimal.Decimal, applications []Application) ([]string, error) {
	windows := newWindowSet(threshold, p.Policy)
	flaggedPostcodes := make(map[string]struct{})
	flagged := make([]string, 0)

	for _, app := range applications {
		if _, done := flaggedPostcodes[app.Postcode]; done {
			continue
		}

		if windows.add(app) {
			flaggedPostcodes[app.Postcode] = struct{}{}
			flagged = append(flagged, app.Postcode)
		}
	}

	return flagged, nil
}
