package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const jobPrompt = `Below is a LinkedIn job description.
Please clean it up, remove HTML artifacts, and organize it into clear sections.
Focus on responsibilities, requirements, and benefits if present.
Keep the original meaning intact.

Original Job Description:
%s

Cleaned Job Description:`

const companyPrompt = `Below is a LinkedIn company description.
Please clean it up, remove any HTML artifacts, and organize it into a clear, concise format.
Keep the original meaning intact.

Original Company Description:
%s

Cleaned Company Description:`

// Ollama talks to a local Ollama-compatible endpoint. The caller owns the
// decision to degrade on error (see Apply); this client just reports it.
type Ollama struct {
	BaseURL string // e.g. http://127.0.0.1:11434
	Model   string // e.g. mistral:7b-instruct
	hc      *http.Client
}

func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		hc:      &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (o *Ollama) Enrich(ctx context.Context, text string, section Section) (string, error) {
	prompt := jobPrompt
	if section == SectionCompany {
		prompt = companyPrompt
	}

	body, err := json.Marshal(generateRequest{
		Model:  o.Model,
		Prompt: fmt.Sprintf(prompt, text),
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := o.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("ollama generate status %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}

	var gr generateResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("ollama decode: %w", err)
	}
	return strings.TrimSpace(gr.Response), nil
}
