package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClassifier is an implementation of the SecondaryClassifier
// interface using OpenAI
type OpenAIClassifier struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewOpenAIClassifier creates a new OpenAI classifier
func NewOpenAIClassifier(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat:  routingPromptFormat,
	}
}

// Classify asks the LLM for a routing recommendation
func (c *OpenAIClassifier) Classify(ctx context.Context, email *core.Email) (*core.Recommendation, error) {
	prompt := fmt.Sprintf(c.promptFormat, email.From, formatRecipients(email.To), email.Subject,
		c.textProcessor.ProcessText(email.Body, c.maxBodySize))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email routing assistant. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	req.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	parsed, err := parseRoutingResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &core.Recommendation{
		Queue:        core.Queue(parsed.RecommendedQueue),
		Confidence:   parsed.ConfidenceScore,
		Reasons:      parsed.Reasons,
		ModelUsed:    c.modelName,
		AnalyzedAt:   time.Now(),
		ProcessingID: resp.ID,
	}, nil
}

// parseRoutingResponse decodes the LLM's JSON reply, falling back to
// extracting the JSON object when the model wraps it in prose
func parseRoutingResponse(text string) (*routingResponse, error) {
	var parsed routingResponse
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}

	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("failed to extract JSON from LLM response")
	}

	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &parsed, nil
}

func formatRecipients(to []string) string {
	if len(to) == 0 {
		return ""
	}
	recipient := to[0]
	if len(to) > 1 {
		recipient += fmt.Sprintf(" and %d others", len(to)-1)
	}
	return recipient
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
