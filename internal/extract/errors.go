package extract

import (
	"errors"

	"github.com/meetscribe/meetscribe/pkg/models"
)

var (
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrNoActionItems   = errors.New("no action items found in transcript")

	// Re-exported provider sentinels so callers only import this package.
	ErrProviderUnavailable = models.ErrProviderUnavailable
	ErrExtractionTimeout   = models.ErrExtractionTimeout
	ErrMalformedResponse   = models.ErrMalformedResponse
)
