// Package mock provides a models.Extractor for tests and local development.
package mock

import (
	"context"

	"github.com/meetscribe/meetscribe/pkg/models"
)

// MockExtractor satisfies models.Extractor for testing.
type MockExtractor struct {
	Name_       string
	ExtractFunc func(ctx context.Context, transcript string) (models.ExtractionResult, error)
}

func (m *MockExtractor) Name() string { return m.Name_ }

func (m *MockExtractor) Extract(ctx context.Context, transcript string) (models.ExtractionResult, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, transcript)
	}
	return models.ExtractionResult{}, nil
}

// NewProvider returns a MockExtractor with sensible default responses.
func NewProvider() *MockExtractor {
	return &MockExtractor{
		Name_: "mock",
		ExtractFunc: func(_ context.Context, _ string) (models.ExtractionResult, error) {
			return models.ExtractionResult{
				Items: []models.DraftItem{
					{Action: "Send the quarterly report to the team", Owner: "Alex", Deadline: "Friday", Priority: models.PriorityHigh},
					{Action: "Schedule a follow-up with the design group", Owner: "Priya", Deadline: "Next week", Priority: models.PriorityMedium},
					{Action: "Update the onboarding checklist", Owner: "Sam", Deadline: "End of month", Priority: models.PriorityLow},
				},
				Highlights: []string{
					"Quarterly results were reviewed and approved.",
					"The design review was pushed to next week.",
				},
			}, nil
		},
	}
}

// NewFailingProvider returns a MockExtractor that always returns the given error.
func NewFailingProvider(err error) *MockExtractor {
	return &MockExtractor{
		Name_: "mock-failing",
		ExtractFunc: func(_ context.Context, _ string) (models.ExtractionResult, error) {
			return models.ExtractionResult{}, err
		},
	}
}

// NewTimeoutProvider returns a MockExtractor that blocks until context is cancelled.
func NewTimeoutProvider() *MockExtractor {
	return &MockExtractor{
		Name_: "mock-timeout",
		ExtractFunc: func(ctx context.Context, _ string) (models.ExtractionResult, error) {
			<-ctx.Done()
			return models.ExtractionResult{}, models.ErrExtractionTimeout
		},
	}
}

// Compile-time check that MockExtractor implements Extractor.
var _ models.Extractor = (*MockExtractor)(nil)
