package fraudcheck

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// WindowPolicy decides how many whole days separate two applications.
// A window only accumulates applications that are zero days from its anchor.
type WindowPolicy string

const (
	// WindowElapsed counts whole 24 hour periods between the two timestamps.
	WindowElapsed WindowPolicy = "elapsed"
	// WindowCalendar counts the difference between the two civil dates, ignoring time of day.
	WindowCalendar WindowPolicy = "calendar"
)

// ParseWindowPolicy converts a configuration value into a WindowPolicy.
func ParseWindowPolicy(s string) (WindowPolicy, error) {
	switch p := WindowPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case WindowElapsed, WindowCalendar:
		return p, nil
	default:
		return "", fmt.Errorf("unknown window policy %q", s)
	}
}

// DayDiff returns the non-negative number of whole days between a and b.
func (p WindowPolicy) DayDiff(a, b time.Time) int {
	if p == WindowCalendar {
		return calendarDays(a, b)
	}
	return elapsedDays(a, b)
}

func elapsedDays(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		// Sub saturates, so negating could overflow.
		d = b.Sub(a)
	}
	return int(d / day)
}

// calendarDays compares UTC dates so equal instants always share a date.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return elapsedDays(
		time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC),
		time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC),
	)
}

// window is a running sum anchored at one application.
type window struct {
	anchor time.Time
	total  decimal.Decimal
}

// windowSet holds the open windows of every postcode for one classification.
type windowSet struct {
	threshold decimal.Decimal
	policy    WindowPolicy
	open      map[string][]window
}

func newWindowSet(threshold decimal.Decimal, policy WindowPolicy) *windowSet {
	return &windowSet{
		threshold: threshold,
		policy:    policy,
		open:      make(map[string][]window),
	}
}

// add accumulates app into its postcode's windows and reports whether the postcode breached.
// A breached postcode's windows are released.
func (s *windowSet) add(app Application) bool {
	if app.Amount.GreaterThan(s.threshold) {
		delete(s.open, app.Postcode)
		return true
	}

	windows := s.open[app.Postcode]
	retained := windows[:0]
	for _, w := range windows {
		if s.policy.DayDiff(app.SubmittedAt, w.anchor) != 0 {
			continue
		}

		w.total = w.total.Add(app.Amount)
		if w.total.GreaterThan(s.threshold) {
			delete(s.open, app.Postcode)
			return true
		}
		retained = append(retained, w)
	}

	// Every application anchors a window of its own.
	s.open[app.Postcode] = append(retained, window{anchor: app.SubmittedAt, total: app.Amount})
	return false
}

// PostcodeJob is one postcode's applications in input order.
type PostcodeJob struct {
	Postcode     string
	Applications []Application
	// Indexes holds each application's position in the input batch.
	Indexes []int
}

// PostcodeResult records whether, and at which batch position, a postcode breached.
type PostcodeResult struct {
	Postcode    string
	Breached    bool
	BreachIndex int
}

// groupByPostcode splits a batch per postcode, in order of first appearance.
func groupByPostcode(applications []Application) []PostcodeJob {
	positions := make(map[string]int)
	jobs := make([]PostcodeJob, 0)

	for i, app := range applications {
		pos, ok := positions[app.Postcode]
		if !ok {
			pos = len(jobs)
			positions[app.Postcode] = pos
			jobs = append(jobs, PostcodeJob{Postcode: app.Postcode})
		}
		jobs[pos].Applications = append(jobs[pos].Applications, app)
		jobs[pos].Indexes = append(jobs[pos].Indexes, i)
	}

	return jobs
}

// classifyPostcode finds the first breach for a single postcode.
func classifyPostcode(threshold decimal.Decimal, policy WindowPolicy, job PostcodeJob) PostcodeResult {
	windows := newWindowSet(threshold, policy)
	for i, app := range job.Applications {
		if windows.add(app) {
			return PostcodeResult{Postcode: job.Postcode, Breached: true, BreachIndex: job.Indexes[i]}
		}
	}

	return PostcodeResult{Postcode: job.Postcode}
}

// orderByBreach returns the breached postcodes in the order a single pass would confirm them.
func orderByBreach(results []PostcodeResult) []string {
	breached := make([]PostcodeResult, 0, len(results))
	for _, r := range results {
		if r.Breached {
			breached = append(breached, r)
		}
	}

	sort.Slice(breached, func(i, j int) bool {
		return breached[i].BreachIndex < breached[j].BreachIndex
	})

	flagged := make([]string, 0, len(breached))
	for _, r := range breached {
		flagged = append(flagged, r.Postcode)
	}
	return flagged
}
