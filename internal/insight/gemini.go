package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const predictionPrompt = `You are an expert in predicting payment behavior. Analyze the following data to predict the likelihood of a client defaulting or delaying payments.

Client ID: %s
Payment History:
%s
Transaction Amount: %s
Due Date: %s
Client Details: %s

Respond with a JSON object {"predictionScore": number, "riskFactors": string} where predictionScore is 0-100 (0 = very unlikely to default, 100 = very likely to default) and riskFactors lists the key factors behind the score.`

const summaryPrompt = `You are a financial analyst. Summarize the payment history of the client below in a short paragraph, pointing out payment patterns, reliability and anything that needs attention.

Client ID: %s
Payment History:
%s

Respond with a JSON object {"summary": string}.`

// GeminiProvider asks a Gemini model for predictions and summaries.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.2)

	return &GeminiProvider{client: client, model: m}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) Predict(ctx context.Context, in PredictionInput) (*Prediction, error) {
	prompt := fmt.Sprintf(predictionPrompt, in.ClientID, in.PaymentHistory,
		formatFloat(in.TransactionAmount), in.DueDate, in.ClientDetails)

	var out Prediction
	if err := p.generate(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *GeminiProvider) Summarize(ctx context.Context, in SummaryInput) (*Summary, error) {
	prompt := fmt.Sprintf(summaryPrompt, in.ClientID, in.PaymentHistory)

	var out Summary
	if err := p.generate(ctx, prompt, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, ErrEmptyResponse
	}
	return &out, nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string, out any) error {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return err
	}
	return decodeReply(text, out)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func decodeReply(text string, out any) error {
	raw := ExtractJSON(text)
	if raw == "" {
		return fmt.Errorf("gemini: no JSON object in reply: %q", truncate(text, 200))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("gemini: decode reply: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
