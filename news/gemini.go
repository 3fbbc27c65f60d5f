package news

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/folio"
	"github.com/phuslu/log"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const instruction = `
You are a financial news editor. You leverage Google Search to ground every
assertion in recent, verifiable news.
For each company you are given, write a level 3 markdown heading with its name
followed by at most three bullet points with the most relevant news of the last
days. Write nothing else: no introduction, no conclusion, no investment advice.
`

// Gemini asks a Gemini model for a news digest grounded with Google Search.
// Any failure is logged and answered with the placeholder page.
type Gemini struct {
	client *genai.Client
	model  string
	logger *log.Logger
}

// NewGemini creates a Gemini provider. An empty model means DefaultModel.
func NewGemini(ctx context.Context, cc *genai.ClientConfig, model string, logger *log.Logger) (*Gemini, error) {
	if cc == nil || cc.APIKey == "" {
		return nil, errors.New("gemini: no API key")
	}
	if cc.Backend == genai.BackendUnspecified {
		cc.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Gemini{client: client, model: model, logger: logger}, nil
}

func (g *Gemini) Headlines(ctx context.Context, holdings []folio.Holding) (string, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt(holdings)), config)
	if err != nil {
		g.logger.Warn().Str("model", g.model).Err(err).Msg("news digest failed")
		return PlaceholderText, nil
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.logger.Warn().Str("model", g.model).Msg("news digest is empty")
		return PlaceholderText, nil
	}
	return text, nil
}

func prompt(holdings []folio.Holding) string {
	var b strings.Builder
	b.WriteString("Give me the latest news about these companies:\n")
	for _, h := range holdings {
		listing := "Korea Exchange"
		if h.Market == folio.Foreign {
			listing = string(h.Exchange)
		}
		fmt.Fprintf(&b, "- %s (%s, %s)\n", h.Name, h.Symbol, listing)
	}
	return b.String()
}

// New returns a Gemini provider if apiKey is set, the Placeholder otherwise.
func New(ctx context.Context, apiKey, model string, logger *log.Logger) (Provider, error) {
	if apiKey == "" {
		return Placeholder{}, nil
	}
	return NewGemini(ctx, &genai.ClientConfig{APIKey: apiKey}, model, logger)
}
