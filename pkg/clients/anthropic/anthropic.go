package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rahim112008/ovinmanager/internal/config"
	"github.com/rahim112008/ovinmanager/internal/domain/models"
)

const (
	messagesPath     = "/v1/messages"
	apiVersion       = "2023-06-01"
	defaultModel     = "claude-sonnet-4-5"
	defaultBaseURL   = "https://api.anthropic.com"
	maxTokens        = 2048
	defaultMediaType = "image/jpeg"
)

// Client defines the vision and advice calls made to the model.
type Client interface {
	AnalyzeImage(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
	SuggestRation(ctx context.Context, animal models.Sheep, objective models.FeedingObjective, prices []models.IngredientPrice) ([]models.RationItem, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	model      string
}

// NewClient creates a configured Anthropic client.
func NewClient(cfg config.AIConfig) Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client := resty.New().
		SetBaseURL(base).
		SetHeader("x-api-key", cfg.AnthropicKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(60 * time.Second)

	return &anthropicClient{httpClient: client, model: model}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type apiError struct {
	Type string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func textBlock(text string) contentBlock {
	return contentBlock{Type: "text", Text: text}
}

// AnalyzeImage asks the model for the biometric profile of the animal in the
// photo and decodes its JSON answer.
func (c *anthropicClient) AnalyzeImage(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if len(req.Image) == 0 {
		return models.AnalysisResult{}, fmt.Errorf("empty image")
	}
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = defaultMediaType
	}

	user := message{
		Role: "user",
		Content: []contentBlock{
			{Type: "image", Source: &imageSource{Type: "base64", MediaType: mediaType, Data: base64.StdEncoding.EncodeToString(req.Image)}},
			textBlock(fmt.Sprintf("Perform %s analysis. Respond in JSON.", req.Mode)),
		},
	}

	text, err := c.complete(ctx, analysisPrompt(req), []message{user}, "{")
	if err != nil {
		return models.AnalysisResult{}, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to unmarshal analysis: %w. Response was: %s", err, text)
	}
	return result, nil
}

// SuggestRation asks for daily ingredient quantities for one animal.
func (c *anthropicClient) SuggestRation(ctx context.Context, animal models.Sheep, objective models.FeedingObjective, prices []models.IngredientPrice) ([]models.RationItem, error) {
	user := message{Role: "user", Content: []contentBlock{textBlock(rationPrompt(animal, objective, prices))}}

	text, err := c.complete(ctx, "", []message{user}, "[")
	if err != nil {
		return nil, err
	}

	var items []models.RationItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ration: %w. Response was: %s", err, text)
	}
	return items, nil
}

// complete sends one request with the assistant turn prefilled so the answer
// starts as JSON, and returns the reconstructed text.
func (c *anthropicClient) complete(ctx context.Context, system string, msgs []message, prefill string) (string, error) {
	msgs = append(msgs, message{Role: "assistant", Content: []contentBlock{textBlock(prefill)}})
	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  msgs,
	}

	var respBody messageResponse
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		SetError(apiErr).
		Post(messagesPath)
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", fmt.Errorf("anthropic api error: status=%d, message=%s", resp.StatusCode(), msg)
	}

	var sb strings.Builder
	for _, block := range respBody.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	return cleanJSON(prefill + sb.String()), nil
}

// cleanJSON strips markdown fences the model sometimes wraps around JSON.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```json", "```"} {
		if idx := strings.Index(text, fence); idx >= 0 && idx < 2 {
			text = strings.TrimPrefix(text[idx:], fence)
			text = strings.TrimSuffix(strings.TrimSpace(text), "```")
			break
		}
	}
	return strings.TrimSpace(text)
}

func analysisPrompt(req models.AnalysisRequest) string {
	calibration := "No calibration object provided. Use standard breed proportions to estimate dimensions."
	if ref, ok := models.LookupReference(req.Reference); ok && ref.ID != models.ReferenceNone {
		calibration = fmt.Sprintf("A REFERENCE CALIBRATION OBJECT IS IN THE PHOTO: %s (known dimension: %s). Locate it and use it as a metric scale to provide high-precision measurements in CM.", ref.Label, ref.Dimension)
	}

	task := `TASK: GENERAL MORPHOLOGY.
1. Measure body length, wither height, heart girth, hip width, chest depth and cannon circumference in CM.
2. Assess coat color and quality.`
	if req.Mode == models.ModeMammary {
		task = `TASK: DETAILED MAMMARY EXAMINATION.
1. Quantitative: measure teat length, teat diameter and inter-teat distance in CM. Estimate udder volume.
2. Qualitative: assess symmetry (Symétrique/Asymétrique), attachment (Solide/Moyenne/Pendante), shape (Globuleuse/Bifide/En poire) and teat orientation (Verticale/Latérale/Divergente).
3. Global mammary score from 1 to 10.`
	}

	breed := req.Breed
	if breed == "" {
		breed = models.RaceInconnue
	}

	morpho := make([]string, 0, len(models.MorphoTraits))
	for _, t := range models.MorphoTraits {
		morpho = append(morpho, t.ID)
	}
	mammary := make([]string, 0, len(models.MammaryTraits))
	for _, t := range models.MammaryTraits {
		mammary = append(mammary, t.ID)
	}
	races := make([]string, 0, len(models.Races))
	for _, r := range models.Races {
		races = append(races, string(r))
	}

	return fmt.Sprintf(`You are an expert Algerian zootechnician and veterinarian.
Analyze the provided image of a sheep (%s context).

%s
%s

Return ONLY a JSON object with these keys:
- "race": one of %s
- "robe_couleur": string
- "robe_qualite": string
- "measurements": object with numeric keys among %s (centimetres)
- "mammary_traits": object with keys among %s (numbers in CM, or the qualitative option)
- "mammary_score": number between 0 and 10
- "classification": string
- "feedback": string, in French`,
		breed, calibration, task,
		strings.Join(races, ", "), strings.Join(morpho, ", "), strings.Join(mammary, ", "))
}

func rationPrompt(animal models.Sheep, objective models.FeedingObjective, prices []models.IngredientPrice) string {
	parts := make([]string, 0, len(prices))
	for _, p := range prices {
		parts = append(parts, fmt.Sprintf("%s: %gDA", p.Name, p.PricePerKg))
	}
	return fmt.Sprintf(`En tant qu'expert en nutrition ovine algérienne, suggère une ration optimale pour une brebis de race %s, poids %gkg, état %s.
Objectif: %s.
Aliments disponibles et prix (DA/kg): %s.
Donne uniquement les quantités journalières recommandées en KG pour chaque ingrédient.
Réponds en JSON uniquement avec un tableau d'objets {"name": string, "quantity_kg": number} en reprenant exactement les noms des aliments.`,
		animal.Race, animal.Weight, animal.State, objective, strings.Join(parts, ", "))
}
