package prediction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomcheck/internal/gemini"
)

type fakeGenerator struct {
	text   string
	err    error
	calls  int
	gotKey string
	gotReq gemini.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, apiKey string, req gemini.GenerateRequest) (string, error) {
	f.calls++
	f.gotKey = apiKey
	f.gotReq = req
	return f.text, f.err
}

type staticKeys struct {
	key string
	err error
}

func (s staticKeys) Resolve(supplied string) (string, error) {
	if supplied != "" {
		return supplied, nil
	}
	return s.key, s.err
}

func newTestService(gen Generator, keys KeyResolver) *Service {
	return NewService(gen, keys, "gemini-2.5-flash", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPredictRejectsEmptyWithoutCallingModel(t *testing.T) {
	gen := &fakeGenerator{text: `{"predictions":[]}`}
	svc := newTestService(gen, staticKeys{key: "k"})

	_, err := svc.Predict(context.Background(), Request{OtherSymptoms: "  "}, "")
	assert.Equal(t, KindValidation, Classify(err))
	assert.Zero(t, gen.calls)
}

func TestPredictMissingCredential(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestService(gen, staticKeys{err: errors.New("no key configured")})

	_, err := svc.Predict(context.Background(), Request{Symptoms: []string{"Fever"}}, "")
	assert.Equal(t, KindCredential, Classify(err))
	assert.Zero(t, gen.calls)
}

func TestPredictReturnsSortedResult(t *testing.T) {
	gen := &fakeGenerator{text: `{"predictions":[{"condition":"Cold","confidence":40},{"condition":"Flu","confidence":95},{"condition":"COVID-19","confidence":70}]}`}
	svc := newTestService(gen, staticKeys{key: "env-key"})

	res, err := svc.Predict(context.Background(), Request{Symptoms: []string{"Fever", "fever", "Cough"}}, "")
	require.NoError(t, err)

	require.Len(t, res.Predictions, 3)
	assert.Equal(t, "Flu", res.Predictions[0].Condition)
	assert.Equal(t, "COVID-19", res.Predictions[1].Condition)
	assert.Equal(t, "Cold", res.Predictions[2].Condition)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "env-key", gen.gotKey)
	assert.Contains(t, gen.gotReq.Prompt, "Selected Symptoms: Fever, Cough\n")
}

func TestPredictPrefersSuppliedKey(t *testing.T) {
	gen := &fakeGenerator{text: `{"predictions":[]}`}
	svc := newTestService(gen, staticKeys{key: "env-key"})

	_, err := svc.Predict(context.Background(), Request{Symptoms: []string{"Rash"}}, "user-key")
	require.NoError(t, err)
	assert.Equal(t, "user-key", gen.gotKey)
}

func TestPredictErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		gen  *fakeGenerator
		want Kind
	}{
		{"empty", &fakeGenerator{text: "  "}, KindEmptyResponse},
		{"malformed", &fakeGenerator{text: "Sure! Here are some conditions"}, KindMalformedResponse},
		{"invalid key", &fakeGenerator{err: &gemini.APIError{StatusCode: 400, Message: "API key not valid. Please pass a valid API key."}}, KindCredential},
		{"overloaded", &fakeGenerator{err: &gemini.APIError{StatusCode: 503, Message: "The model is overloaded. Please try again later."}}, KindService},
		{"network", &fakeGenerator{err: context.DeadlineExceeded}, KindService},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(tc.gen, staticKeys{key: "k"})
			_, err := svc.Predict(context.Background(), Request{Symptoms: []string{"Cough"}}, "")
			require.Error(t, err)

			var pe *Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.want, pe.Kind)
		})
	}
}
