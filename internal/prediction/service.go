package prediction

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skufu/symptomcheck/internal/gemini"
)

// Generator sends one prompt to the model and returns its raw text.
type Generator interface {
	Generate(ctx context.Context, apiKey string, req gemini.GenerateRequest) (string, error)
}

// KeyResolver picks the API key to use for a call.
type KeyResolver interface {
	Resolve(supplied string) (string, error)
}

type Service struct {
	gen    Generator
	keys   KeyResolver
	model  string
	logger *slog.Logger
}

func NewService(gen Generator, keys KeyResolver, model string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gen:    gen,
		keys:   keys,
		model:  model,
		logger: logger,
	}
}

// Predict validates the request, asks the model for candidate conditions and
// returns them sorted by confidence. Every error it returns is an *Error.
func (s *Service) Predict(ctx context.Context, req Request, suppliedKey string) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	apiKey, err := s.keys.Resolve(suppliedKey)
	if err != nil {
		return nil, &Error{Kind: KindCredential, Err: err}
	}

	n := req.Normalize()
	started := time.Now()
	text, err := s.gen.Generate(ctx, apiKey, NewGenerateRequest(s.model, n))
	if err != nil {
		kind := Classify(err)
		s.logger.Warn("prediction request failed",
			"kind", kind,
			"duration", time.Since(started),
			"error", err,
		)
		return nil, &Error{Kind: kind, Err: err}
	}

	result, err := ParseResult(text)
	if err != nil {
		s.logger.Warn("prediction response rejected", "kind", Classify(err), "error", err)
		return nil, err
	}

	s.logger.Debug("prediction completed",
		"symptoms", len(n.Symptoms),
		"predictions", len(result.Predictions),
		"duration", time.Since(started),
	)
	return result, nil
}
