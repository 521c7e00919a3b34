// Package matchmaker turns a free-text request into catalog recommendations
// using a generative-AI provider.
package matchmaker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/payscout/internal/adapters/llm"
	"github.com/okian/payscout/internal/domain/model"
)

// Recommendation bounds.
const (
	MinScore           = 1
	MaxScore           = 10
	MaxRecommendations = 4
)

// User-facing messages.
const (
	MessageEmptyPrompt = "Please tell me what you're looking for."
	MessageNoMatch     = "I couldn't find a perfect match. Try rephrasing your request!"
	MessageFailed      = "Sorry, something went wrong while fetching your matches. The AI assistant might be overloaded. Please try again in a moment."
	MessageStale       = "A newer request replaced this one."
)

// SystemInstruction frames the recommendation task for the model.
const SystemInstruction = `You are an expert advisor for remote work and online earning opportunities. Your task is to analyze a user's request and a provided list of platforms to find the best matches.
- You must return a JSON object that strictly adheres to the provided schema.
- The JSON object must contain a key "recommendations".
- The "recommendations" value must be an array of objects.
- You must recommend between 2 and 4 platforms.
- Each recommendation object MUST contain three keys: "platformName", "reason", and "matchScore".
- "platformName" must be the exact name of a platform from the provided list.
- "reason" must be a concise, personalized explanation (under 40 words) of why this platform is a great fit for the user's specific needs, referencing their query.
- "matchScore" must be an integer between 1 and 10, representing how good of a match it is.
- Prioritize platforms with higher ratings and those that closely match the user's stated requirements for location, payment methods, skills, and time commitment.
- Strongly avoid platforms with a 'warning' field unless they are a perfect match for a very specific query.
- Do not output anything other than the single, valid JSON object.`

// Projection is the reduced platform record sent to the model.
type Projection struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	PayRate        string  `json:"payRate"`
	Requirements   string  `json:"requirements"`
	PaymentMethods string  `json:"paymentMethods"`
	Difficulty     string  `json:"difficulty"`
	Rating         string  `json:"rating"`
	Warning        *string `json:"warning"`
}

// Project reduces platforms to their prompt projection, preserving order.
func Project(platforms []model.Platform) []Projection {
	out := make([]Projection, 0, len(platforms))
	for _, p := range platforms {
		proj := Projection{
			Name:           p.Name,
			Description:    p.Description,
			PayRate:        p.PayRate,
			Requirements:   p.Requirements,
			PaymentMethods: strings.Join(p.PaymentMethods, ", "),
			Difficulty:     p.Difficulty,
			Rating:         p.Rating,
		}
		if advisory := p.Advisory(); advisory != "" {
			proj.Warning = &advisory
		}
		out = append(out, proj)
	}
	return out
}

// UserContent embeds the serialized catalog and the raw query.
func UserContent(platforms []Projection, prompt string) (string, error) {
	catalog, err := json.Marshal(platforms)
	if err != nil {
		return "", fmt.Errorf("marshal projection: %w", err)
	}
	return fmt.Sprintf("Here is the list of available platforms: %s. Now, please analyze the following user request and find the best matches: \"%s\"", catalog, prompt), nil
}

// ResponseSchema is the JSON shape the model must return.
func ResponseSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"recommendations": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"platformName": {Type: llm.TypeString},
						"reason":       {Type: llm.TypeString},
						"matchScore":   {Type: llm.TypeInteger},
					},
					PropertyOrder: []string{"platformName", "reason", "matchScore"},
					Required:      []string{"platformName", "reason", "matchScore"},
				},
			},
		},
		PropertyOrder: []string{"recommendations"},
		Required:      []string{"recommendations"},
	}
}
