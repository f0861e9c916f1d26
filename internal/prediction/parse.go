package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseResult decodes the model's text into a Result sorted by descending
// confidence. Confidence values outside 0-100 are clamped.
func ParseResult(text string) (*Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &Error{Kind: KindEmptyResponse, Err: ErrEmptyResponse}
	}

	var raw struct {
		Predictions *[]Prediction `json:"predictions"`
	}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if raw.Predictions == nil {
		return nil, &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, errors.New("missing predictions"))}
	}

	predictions := *raw.Predictions
	for i := range predictions {
		predictions[i].Confidence = clampConfidence(predictions[i].Confidence)
	}
	SortByConfidence(predictions)

	return &Result{Predictions: predictions}, nil
}
