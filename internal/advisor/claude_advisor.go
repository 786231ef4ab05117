package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"catalogengine/internal/logger"
	"catalogengine/internal/model"
)

const logTag = "ADVISOR"

const claudeModel = "claude-sonnet-4-20250514"

// ClaudeAdvisor is the Advisor implementation backed by Anthropic's
// API. Any failure degrades to a fixed default commentary; the caller's
// run never fails because of it.
type ClaudeAdvisor struct {
	client    *anthropic.Client
	maxTokens int64
	timeout   time.Duration
}

// NewClaudeAdvisor returns nil, false when apiKey is empty, signalling the
// caller should fall back to NullAdvisor instead of constructing a
// collaborator doomed to fail every call.
func NewClaudeAdvisor(apiKey string) (*ClaudeAdvisor, bool) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, false
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeAdvisor{
		client:    &client,
		maxTokens: 1500,
		timeout:   20 * time.Second,
	}, true
}

// claudeVerdict mirrors the JSON object the prompt asks Claude to
// return. Only these fields are modeled, and renderComment surfaces all
// of them except PriceJustification; anything extra in the response is
// ignored by the decoder.
type claudeVerdict struct {
	Recommendation     string   `json:"recommendation"`
	Confidence         int      `json:"confidence"`
	PriceJustification string   `json:"price_justification"`
	KeyInsight         string   `json:"key_insight"`
	Risks              []string `json:"risks"`
}

// Comment asks Claude for a short qualitative read on an already-ranked
// product and renders it as one line of commentary. Any failure along
// the way (timeout, API error, malformed JSON) degrades to the fixed
// manual-review default rather than propagating.
func (a *ClaudeAdvisor) Comment(ctx context.Context, product model.AnalyzedProduct) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildPrompt(product)

	resp, err := a.client.Messages.New(timeoutCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(claudeModel),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		logger.Warn(logTag, fmt.Sprintf("claude call failed for %s, using default: %v", product.Product.UUID, err))
		return defaultComment(), nil
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	verdict, err := parseVerdict(text.String())
	if err != nil {
		logger.Warn(logTag, fmt.Sprintf("claude response unparseable for %s, using default: %v", product.Product.UUID, err))
		return defaultComment(), nil
	}

	return renderComment(verdict), nil
}

func buildPrompt(p model.AnalyzedProduct) string {
	return fmt.Sprintf(`Analiza este producto de dropshipping y dame recomendaciones especificas.

## PRODUCTO
- Nombre: %s
- Precio proveedor: $%d COP
- Precio sugerido: $%d COP
- Ventas 7 dias: %d
- Ventas 30 dias: %d
- Stock: %d

## ANALISIS FINANCIERO
- Margen neto por venta: $%d COP
- ROI: %.1f%%
- Precio breakeven: $%d COP
- Es rentable?: %s

## TENDENCIA
- Patron detectado: %s (%s)
- Pasa el filtro de viabilidad?: %s

---

Responde en JSON con esta estructura exacta:
{
    "recommendation": "VENDER" | "NO_VENDER" | "VENDER_CON_CONDICIONES",
    "confidence": 1-10,
    "price_justification": "explicacion breve",
    "key_insight": "insight principal en una oracion",
    "risks": ["riesgo 1", "riesgo 2"]
}

Solo responde con el JSON, sin texto adicional.`,
		p.Product.Name,
		p.Product.ProviderPrice,
		p.Margin.OptimalPrice,
		p.Product.Sales7d,
		p.Product.Sales30d,
		p.Product.Stock,
		p.Margin.NetMargin,
		p.Margin.ROIPct,
		p.Margin.BreakEvenPrice,
		yesNo(p.Margin.IsProfitable),
		p.Trend.Pattern,
		p.Trend.PatternReason,
		yesNo(p.Filter.Passed),
	)
}

func parseVerdict(raw string) (claudeVerdict, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = strings.TrimPrefix(strings.TrimSpace(parts[1]), "json")
		}
	}

	var v claudeVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &v); err != nil {
		return claudeVerdict{}, err
	}
	return v, nil
}

func renderComment(v claudeVerdict) string {
	if v.KeyInsight == "" && v.Recommendation == "" {
		return defaultComment()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s, confianza %d/10] %s", v.Recommendation, v.Confidence, v.KeyInsight)
	if len(v.Risks) > 0 {
		fmt.Fprintf(&b, " Riesgos: %s.", strings.Join(v.Risks, "; "))
	}
	return b.String()
}

// defaultComment is the fallback note used whenever Claude is
// unavailable or returns something unparseable.
func defaultComment() string {
	return "[REVISAR_MANUALMENTE, confianza 5/10] No se pudo analizar automaticamente."
}

func yesNo(b bool) string {
	if b {
		return "Si"
	}
	return "No"
}
