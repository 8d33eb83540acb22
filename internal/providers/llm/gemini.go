package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/edabot/internal/config"
	"github.com/sandevgo/edabot/internal/core"
)

// Gemini calls the generateContent endpoint of the Google AI REST API.
type Gemini struct {
	baseProvider
	temperature float64
}

func NewGemini(cfg *config.GeminiConfig) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		temperature:  cfg.Temperature,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  map[string]any  `json:"generationConfig,omitempty"`
}

// Generate sends the assembled prompt to the model. HTTP 429 and 503 are
// returned as successful Generations carrying that status code; the
// orchestrator maps them to fixed user-facing text.
func (g *Gemini) Generate(ctx context.Context, messages []core.Turn) (core.Generation, error) {
	payload := geminiRequest{
		GenerationConfig: map[string]any{"temperature": g.temperature},
	}

	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			if payload.SystemInstruction == nil {
				payload.SystemInstruction = &geminiContent{}
			}
			payload.SystemInstruction.Parts = append(payload.SystemInstruction.Parts, geminiPart{Text: msg.Content})
		case core.RoleAssistant:
			payload.Contents = append(payload.Contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		default:
			payload.Contents = append(payload.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", g.model)
	headers := map[string]string{"x-goog-api-key": g.apiKey}

	resp, err := g.doRequest(ctx, http.MethodPost, path, payload, headers)
	if err != nil {
		return core.Generation{}, err
	}
	defer resp.Body.Close()

	return parseGeminiResponse(resp)
}

func parseGeminiResponse(resp *http.Response) (core.Generation, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Generation{}, fmt.Errorf("read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		// Load signals are part of the response envelope, not failures.
		return core.Generation{StatusCode: resp.StatusCode}, nil
	default:
		return core.Generation{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Generation{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Candidates) == 0 {
		return core.Generation{}, fmt.Errorf("empty candidates: %s", string(data))
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return core.Generation{Answer: sb.String(), StatusCode: http.StatusOK}, nil
}
