package fraudcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Classifier flags postcodes whose applications exceed a threshold within a window.
// Flagged postcodes are returned once each, in the order they were confirmed.
type Classifier interface {
	Classify(ctx context.Context, threshold decimal.Decimal, applications []Application) ([]string, error)
}

// Kind selects a Classifier implementation.
type Kind string

const (
	KindSequential Kind = "sequential"
	KindWorker     Kind = "worker"
	KindFanOut     Kind = "fanout"
)

// ParseKind converts a configuration value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSequential, KindWorker, KindFanOut:
		return k, nil
	default:
		return "", fmt.Errorf("unknown classifier kind %q", s)
	}
}

// NewClassifier builds the classifier for kind. workerCount is ignored by the sequential classifier.
func NewClassifier(kind Kind, policy WindowPolicy, workerCount int) (Classifier, error) {
	switch kind {
	case KindSequential:
		return NewWindowProcessor(policy), nil
	case KindWorker:
		return NewWorkerWindowProcessor(policy, workerCount), nil
	case KindFanOut:
		return NewConcurrentWindowProcessor(policy, workerCount), nil
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
}
