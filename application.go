package fraudcheck

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedApplication = errors.New("application must be \"postcode, timestamp, amount\"")
	ErrInvalidTimestamp     = errors.New("invalid timestamp")
	ErrInvalidAmount        = errors.New("invalid amount")
)

const fieldSeparator = ", "

// Zone-less timestamps are read as UTC. Fractional seconds are accepted by every layout.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Application is a single loan application.
type Application struct {
	Postcode    string
	SubmittedAt time.Time
	Amount      decimal.Decimal
}

// ApplicationError reports which application in a batch could not be parsed.
type ApplicationError struct {
	Index int
	Err   error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application %d: %v", e.Index, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// ParseApplication parses "postcode, timestamp, amount".
func ParseApplication(raw string) (Application, error) {
	fields := strings.Split(raw, fieldSeparator)
	if len(fields) != 3 {
		return Application{}, fmt.Errorf("%w: got %d fields", ErrMalformedApplication, len(fields))
	}

	submittedAt, err := parseTimestamp(fields[1])
	if err != nil {
		return Application{}, err
	}

	amount, err := decimal.NewFromString(fields[2])
	if err != nil {
		return Application{}, fmt.Errorf("%w %q", ErrInvalidAmount, fields[2])
	}

	return Application{
		Postcode:    fields[0],
		SubmittedAt: submittedAt,
		Amount:      amount,
	}, nil
}

// ParseApplications parses a whole batch. The first bad entry fails the batch.
func ParseApplications(raw []string) ([]Application, error) {
	applications := make([]Application, 0, len(raw))
	for i, r := range raw {
		app, err := ParseApplication(r)
		if err != nil {
			return nil, &ApplicationError{Index: i, Err: err}
		}
		applications = append(applications, app)
	}

	return applications, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidTimestamp, s)
}
