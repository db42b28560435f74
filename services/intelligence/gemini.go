package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"frontdesk/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const extractionPrompt = `You are a data extraction assistant. Analyze the conversation and extract user information.

RULES:
- Only extract information explicitly provided by the USER (not the assistant).
- If a value is incomplete or unclear, return null for that field.
- Do not guess or make up information.
- Phone numbers: digits with country code, e.g. +1234567890. Assume +1 when none given.
- Emails: must contain @ and a dot after it.
- Names: properly capitalized full name.

Respond ONLY with a JSON object whose keys are exactly the requested field names, with string values or null.`

// GeminiClient implements Client on the Gemini API.
type GeminiClient struct {
	chatModel    *genai.GenerativeModel
	extractModel *genai.GenerativeModel
	timeout      time.Duration
}

// NewGeminiClient builds the Gemini-backed language model client.
func NewGeminiClient(apiKey string, timeout time.Duration) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	chatModel := client.GenerativeModel("models/gemini-1.5-pro")

	extractModel := client.GenerativeModel("models/gemini-1.5-flash")
	extractModel.ResponseMIMEType = "application/json"
	var zero float32
	extractModel.Temperature = &zero // deterministic extraction

	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GeminiClient{
		chatModel:    chatModel,
		extractModel: extractModel,
		timeout:      timeout,
	}, nil
}

// Complete generates the assistant's reply text.
func (g *GeminiClient) Complete(ctx context.Context, systemPrompt string, history []models.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nConversation so far:\n")
	sb.WriteString(renderHistory(history))
	sb.WriteString("\nASSISTANT:")

	resp, err := g.chatModel.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	return collectText(resp), nil
}

// ExtractFields asks the model for the named fields as JSON. Null and empty
// values are dropped from the result.
func (g *GeminiClient) ExtractFields(ctx context.Context, fields []models.FieldSpec, history []models.Turn) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}

	var sb strings.Builder
	sb.WriteString(extractionPrompt)
	sb.WriteString("\n\nRequested fields: ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n\nExtract information from this conversation:\n\n")
	sb.WriteString(renderHistory(history))

	resp, err := g.extractModel.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("gemini extraction error: %w", err)
	}

	raw := collectText(resp)
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	out := make(map[string]string)
	for _, name := range names {
		value, ok := parsed[name]
		if !ok || value == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprintf("%v", value))
		if s == "" || strings.EqualFold(s, "null") {
			continue
		}
		out[name] = s
	}
	return out, nil
}

func renderHistory(history []models.Turn) string {
	var sb strings.Builder
	for _, turn := range history {
		label := "USER"
		if turn.Role == "assistant" {
			label = "ASSISTANT"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String()
}
