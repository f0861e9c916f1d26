package prediction

import (
	"fmt"
	"strings"

	"github.com/Skufu/symptomcheck/internal/gemini"
)

const promptTemplate = `Analyze the following symptoms and provide a list of 3 to 5 potential medical conditions.

Selected Symptoms: %s
Other Symptoms described by user: "%s"

For each condition, provide a confidence score (0-100), a brief description, and recommended next steps.
Crucially, always emphasize that this is not a diagnosis and the user must consult a healthcare professional.`

// Temperature is kept moderate so repeated submissions give similar answers.
const Temperature float32 = 0.5

// ResponseSchema constrains the model to the Result shape.
var ResponseSchema = &gemini.Schema{
	Type: gemini.TypeObject,
	Properties: map[string]*gemini.Schema{
		"predictions": {
			Type:        gemini.TypeArray,
			Description: "A list of potential medical conditions based on the symptoms.",
			Items: &gemini.Schema{
				Type: gemini.TypeObject,
				Properties: map[string]*gemini.Schema{
					"condition": {
						Type:        gemini.TypeString,
						Description: "The name of the potential medical condition.",
					},
					"confidence": {
						Type:        gemini.TypeInteger,
						Description: "A confidence score from 0 to 100 on how likely the condition is, based on the provided symptoms.",
					},
					"description": {
						Type:        gemini.TypeString,
						Description: "A brief, easy-to-understand description of the condition.",
					},
					"nextSteps": {
						Type:        gemini.TypeString,
						Description: "Recommended next steps, such as 'Consult a primary care physician' or 'Monitor symptoms at home'. This should always include advice to see a doctor.",
					},
				},
				Required: []string{"condition", "confidence", "description", "nextSteps"},
			},
		},
	},
	Required: []string{"predictions"},
}

// BuildPrompt embeds the normalized request into the model prompt.
func BuildPrompt(req Request) string {
	n := req.Normalize()
	return fmt.Sprintf(promptTemplate, strings.Join(n.Symptoms, ", "), n.OtherSymptoms)
}

// NewGenerateRequest pairs the prompt with the fixed response constraints.
func NewGenerateRequest(model string, req Request) gemini.GenerateRequest {
	return gemini.GenerateRequest{
		Model:            model,
		Prompt:           BuildPrompt(req),
		ResponseMIMEType: gemini.MIMETypeJSON,
		ResponseSchema:   ResponseSchema,
		Temperature:      Temperature,
	}
}
