package prediction

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Skufu/symptomcheck/internal/gemini"
)

// Kind groups prediction failures by what the user can do about them.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindCredential        Kind = "credential"
	KindEmptyResponse     Kind = "empty_response"
	KindMalformedResponse Kind = "malformed_response"
	KindService           Kind = "service"
)

var (
	ErrNoSymptoms        = errors.New("no symptoms provided")
	ErrEmptyResponse     = errors.New("empty response from model")
	ErrMalformedResponse = errors.New("malformed response from model")
)

var kindMessages = map[Kind]string{
	KindValidation:        "Please select at least one symptom or describe your symptoms.",
	KindCredential:        "Your API key is missing or not valid. Please select a valid key and try again.",
	KindEmptyResponse:     "The model returned an empty response. Please try again.",
	KindMalformedResponse: "The model returned a response that could not be read. Please try again.",
	KindService:           "Failed to get prediction. The model may be overloaded. Please try again later.",
}

// Message is the text shown to the user for this kind of failure.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindService]
}

// Error tags an underlying failure with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCredentialMessage reports whether an upstream error message says the key
// was rejected.
func IsCredentialMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "api key not valid")
}

// Classify maps any error returned while predicting to a Kind. Unknown
// errors are treated as service failures.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}

	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return KindCredential
	}

	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return KindCredential
		}
		if IsCredentialMessage(apiErr.Message) {
			return KindCredential
		}
		return KindService
	}

	if IsCredentialMessage(err.Error()) {
		return KindCredential
	}
	return KindService
}
