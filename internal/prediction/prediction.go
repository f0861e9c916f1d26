package prediction

import (
	"sort"
	"strings"
)

// Prediction is one candidate condition returned by the model.
type Prediction struct {
	Condition   string  `json:"condition"`
	Confidence  float64 `json:"confidence"` // percentage, 0-100
	Description string  `json:"description"`
	NextSteps   string  `json:"nextSteps"`
}

// Result is the ordered list of predictions for a single request.
type Result struct {
	Predictions []Prediction `json:"predictions"`
}

// Top returns the most likely prediction, or false when the result is empty.
func (r *Result) Top() (Prediction, bool) {
	if r == nil || len(r.Predictions) == 0 {
		return Prediction{}, false
	}
	return r.Predictions[0], true
}

// Request holds what the user submitted on the form.
type Request struct {
	Symptoms      []string `json:"symptoms"`
	OtherSymptoms string   `json:"otherSymptoms"`
}

// SymptomList is the catalogue of selectable symptoms shown on the form.
var SymptomList = []string{
	"Fever",
	"Cough",
	"Headache",
	"Fatigue",
	"Sore Throat",
	"Runny Nose",
	"Shortness of Breath",
	"Chest Pain",
	"Nausea",
	"Vomiting",
	"Diarrhea",
	"Abdominal Pain",
	"Muscle Aches",
	"Joint Pain",
	"Dizziness",
	"Rash",
	"Chills",
	"Loss of Taste or Smell",
	"Sneezing",
	"Itchy Eyes",
	"Back Pain",
	"Insomnia",
	"Loss of Appetite",
	"Swelling",
}

// Normalize trims the input, drops blank symptoms and removes duplicates
// case-insensitively, keeping the first spelling seen.
func (r Request) Normalize() Request {
	seen := make(map[string]struct{}, len(r.Symptoms))
	symptoms := make([]string, 0, len(r.Symptoms))
	for _, s := range r.Symptoms {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		symptoms = append(symptoms, trimmed)
	}

	return Request{
		Symptoms:      symptoms,
		OtherSymptoms: strings.TrimSpace(r.OtherSymptoms),
	}
}

// Validate rejects a request with no selected symptoms and no description.
func (r Request) Validate() error {
	n := r.Normalize()
	if len(n.Symptoms) == 0 && n.OtherSymptoms == "" {
		return &Error{Kind: KindValidation, Err: ErrNoSymptoms}
	}
	return nil
}

// SortByConfidence orders predictions from most to least likely. Ties keep
// their original order.
func SortByConfidence(predictions []Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
}

func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
