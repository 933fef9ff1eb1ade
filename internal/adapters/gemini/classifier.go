package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/utils"
	"go.uber.org/zap"
)

// GeminiClassifier is an implementation of the SecondaryClassifier
// interface using Google Gemini
type GeminiClassifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// routingResponse represents the structured response from the LLM
type routingResponse struct {
	RecommendedQueue string   `json:"recommended_queue"`
	ConfidenceScore  float64  `json:"confidence_score"`
	Reasons          []string `json:"reasons"`
}

// NewGeminiClassifier creates a new Gemini classifier
func NewGeminiClassifier(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GeminiClassifier {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClassifier{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat:  routingPromptFormat,
	}
}

// Close closes the Gemini client
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify asks the LLM for a routing recommendation
func (c *GeminiClassifier) Classify(ctx context.Context, email *core.Email) (*core.Recommendation, error) {
	to := ""
	if len(email.To) > 0 {
		to = email.To[0]
		if len(email.To) > 1 {
			to += fmt.Sprintf(" and %d others", len(email.To)-1)
		}
	}

	prompt := fmt.Sprintf(c.promptFormat, email.From, to, email.Subject,
		c.textProcessor.ProcessText(email.Body, c.maxBodySize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	// Parse the LLM's JSON response, extracting the JSON object when the
	// model wraps it in prose
	var parsed routingResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		jsonStart := -1
		jsonEnd := -1
		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}

		if jsonStart < 0 || jsonEnd <= jsonStart {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	return &core.Recommendation{
		Queue:      core.Queue(parsed.RecommendedQueue),
		Confidence: parsed.ConfidenceScore,
		Reasons:    parsed.Reasons,
		ModelUsed:  c.modelName,
		AnalyzedAt: time.Now(),
	}, nil
}

const routingPromptFormat = `You are an email routing assistant for a customs brokerage document desk.
Recommend exactly one routing queue for the following email.
Respond with a JSON object containing:
- recommended_queue: one of Account_Inquiry_US, ORD_SI-Non_UPS_Shipments, RAFT_PreAlert, RAFT_ArrivalNotice, Shipment_Initiation_Brkg_Inland_SI
- confidence_score: number between 0 and 1 (how confident you are in the recommendation)
- reasons: array of short strings explaining the recommendation

Queue guide:
- Account_Inquiry_US: POA, account setup, account needed requests
- ORD_SI-Non_UPS_Shipments: mail from Evergreen Line and other external carriers
- RAFT_PreAlert: pre-alert notifications for incoming shipments
- RAFT_ArrivalNotice: ocean arrival notices and port notifications
- Shipment_Initiation_Brkg_Inland_SI: everything else

Email:
From: %s
To: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`
