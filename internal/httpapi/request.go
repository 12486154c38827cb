package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fraudcheck"
)

// Validation failures reported to clients verbatim.
var (
	ErrInvalidThreshold    = errors.New("threshold must exist and be numeric")
	ErrInvalidApplications = errors.New("applications must exist and be in an array")
)

var jsonNull = []byte("null")

// CheckRequest is a validated fraud check.
type CheckRequest struct {
	Threshold    decimal.Decimal
	Applications []fraudcheck.Application
}

// DecodeCheckRequest validates a body of the form {"threshold": 150.75, "applications": ["..."]}.
// The threshold is checked first, then the presence of applications, then every application.
func DecodeCheckRequest(body []byte) (CheckRequest, error) {
	var raw struct {
		Threshold    json.RawMessage `json:"threshold"`
		Applications json.RawMessage `json:"applications"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		// Anything that is not an object carries no threshold.
		return CheckRequest{}, ErrInvalidThreshold
	}

	threshold, err := parseThreshold(raw.Threshold)
	if err != nil {
		return CheckRequest{}, err
	}

	lines, err := parseApplicationLines(raw.Applications)
	if err != nil {
		return CheckRequest{}, err
	}

	applications, err := fraudcheck.ParseApplications(lines)
	if err != nil {
		return CheckRequest{}, err
	}

	return CheckRequest{Threshold: threshold, Applications: applications}, nil
}

// parseThreshold accepts a JSON number or a numeric string.
func parseThreshold(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return decimal.Decimal{}, ErrInvalidThreshold
	}

	var threshold decimal.Decimal
	if err := threshold.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, ErrInvalidThreshold
	}
	return threshold, nil
}

func parseApplicationLines(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, ErrInvalidApplications
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, ErrInvalidApplications
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		var line string
		if err := json.Unmarshal(item, &line); err != nil {
			return nil, &fraudcheck.ApplicationError{
				Index: i,
				Err:   fmt.Errorf("%w: not a string", fraudcheck.ErrMalformedApplication),
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}
