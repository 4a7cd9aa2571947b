// Package engine is the Gemini-backed oracle of the duel: it scores turns,
// writes the post-game analysis, arbitrates challenges, explains statements
// and paints pictures for them.
package engine

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.0-flash-preview-image-generation"

	// maxParseAttempts bounds how often a call is repeated when the model
	// answers with something that is not the requested YAML.
	maxParseAttempts = 3

	turnTemperature      = 0.8
	summaryTemperature   = 0.8
	challengeTemperature = 0.5
	explainTemperature   = 0.7
)

var errNoContent = errors.New("no content returned from Gemini")

//go:embed prompts/*.txt
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"list": func(items []string, empty string) string {
		if len(items) == 0 {
			return empty
		}
		return strings.Join(items, ", ")
	},
	"score": func(m models.DuelMessage) string {
		if !m.HasScore() {
			return "N/A"
		}
		return strconv.Itoa(m.ScoreValue())
	},
	"penaltyCap": func(wager int) int { return 3 * wager },
}).ParseFS(promptFS, "prompts/*.txt"))

// call is one generation request.
type call struct {
	model       string
	system      string
	prompt      string
	temperature float32
}

// backend produces the response parts for a call.
type backend interface {
	generate(ctx context.Context, c call) ([]genai.Part, error)
}

type geminiBackend struct {
	client *genai.Client
}

func (g *geminiBackend) generate(ctx context.Context, c call) ([]genai.Part, error) {
	model := g.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	if c.system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(c.system))
	}
	resp, err := model.GenerateContent(ctx, genai.Text(c.prompt))
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errNoContent
	}
	return resp.Candidates[0].Content.Parts, nil
}

// Engine implements duel.Oracle on top of Gemini. It is safe for concurrent
// use.
type Engine struct {
	client     *genai.Client
	backend    backend
	model      string
	imageModel string
	log        *slog.Logger
}

var _ duel.Oracle = (*Engine)(nil)

// NewEngine connects to Gemini. Empty model names select the defaults.
func NewEngine(ctx context.Context, apiKey, model, imageModel string, log *slog.Logger) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("engine: create Gemini client: %w", err)
	}
	e := newEngine(&geminiBackend{client: client}, model, imageModel, log)
	e.client = client
	return e, nil
}

func newEngine(b backend, model, imageModel string, log *slog.Logger) *Engine {
	if model == "" {
		model = DefaultModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		backend:    b,
		model:      model,
		imageModel: imageModel,
		log:        log,
	}
}

// Close releases the Gemini client.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

type turnData struct {
	models.Settings
	TierDescription string
	History         []models.DuelMessage
	Liked           []string
	TooComplexCount int
	PlayerTotal     int
	AITotal         int
	Rules           string
}

// RequestTurn implements duel.Oracle.
func (e *Engine) RequestTurn(ctx context.Context, req models.TurnRequest) (*models.TurnVerdict, error) {
	data := turnData{
		Settings:        req.Settings,
		TierDescription: models.TierDescription(req.Settings.Tier),
		History:         req.History,
		Liked:           likedTexts(req.History),
		TooComplexCount: req.TooComplexCount,
		PlayerTotal:     req.PlayerTotal,
		AITotal:         req.AITotal,
		Rules:           models.Rulebook(),
	}
	system, err := render("turn_system.txt", data)
	if err != nil {
		return nil, err
	}
	prompt, err := render("turn.txt", struct{ Statement string }{lastPlayerStatement(req.History)})
	if err != nil {
		return nil, err
	}

	var v models.TurnVerdict
	c := call{model: e.model, system: system, prompt: prompt, temperature: turnTemperature}
	if err := e.generateYAML(ctx, "turn", c, &v); err != nil {
		return nil, err
	}
	if strings.TrimSpace(v.AIReplyText) == "" {
		return nil, errors.New("engine: turn verdict without a reply")
	}
	return &v, nil
}

// Summarize implements duel.Oracle.
func (e *Engine) Summarize(ctx context.Context, req models.SummaryRequest) (string, error) {
	prompt, err := render("summary.txt", struct {
		models.Settings
		History []models.DuelMessage
		Liked   []string
	}{req.Settings, req.History, likedTexts(req.History)})
	if err != nil {
		return "", err
	}
	return e.generateText(ctx, call{model: e.model, prompt: prompt, temperature: summaryTemperature})
}

// ArbitrateChallenge implements duel.Oracle.
func (e *Engine) ArbitrateChallenge(ctx context.Context, req models.ChallengeRequest) (*models.ChallengeVerdict, error) {
	system, err := render("challenge.txt", struct {
		models.ChallengeRequest
		Rules string
	}{req, models.Rulebook()})
	if err != nil {
		return nil, err
	}

	var v models.ChallengeVerdict
	c := call{
		model:       e.model,
		system:      system,
		prompt:      "Evaluează contestația conform instrucțiunilor.",
		temperature: challengeTemperature,
	}
	if err := e.generateYAML(ctx, "challenge", c, &v); err != nil {
		return nil, err
	}
	v.Penalty = min(v.Penalty, 3*req.Wager)
	return &v, nil
}

// ExplainAge is the age of the imagined listener an explanation is pitched
// at for tier t.
func ExplainAge(tier int) int {
	return max(10, tier*3+5)
}

// Explain implements duel.Oracle.
func (e *Engine) Explain(ctx context.Context, text string, tier int) (string, error) {
	prompt, err := render("explain.txt", struct {
		Age  int
		Text string
	}{ExplainAge(tier), text})
	if err != nil {
		return "", err
	}
	return e.generateText(ctx, call{model: e.model, prompt: prompt, temperature: explainTemperature})
}

// GenerateImage implements duel.Oracle.
func (e *Engine) GenerateImage(ctx context.Context, prompt string) (*models.Image, error) {
	full, err := render("image.txt", prompt)
	if err != nil {
		return nil, err
	}
	parts, err := e.backend.generate(ctx, call{model: e.imageModel, prompt: full, temperature: 1})
	if err != nil {
		return nil, fmt.Errorf("engine: image: %w", err)
	}
	for _, p := range parts {
		if blob, ok := p.(genai.Blob); ok && len(blob.Data) > 0 {
			return &models.Image{MIMEType: blob.MIMEType, Data: blob.Data}, nil
		}
	}
	return nil, errors.New("engine: image: model returned no image data")
}

func (e *Engine) generateText(ctx context.Context, c call) (string, error) {
	parts, err := e.backend.generate(ctx, c)
	if err != nil {
		return "", fmt.Errorf("engine: %w", err)
	}
	text := joinText(parts)
	if text == "" {
		return "", fmt.Errorf("engine: %w", errNoContent)
	}
	return text, nil
}

// generateYAML repeats the call until the reply decodes into out. Transport
// errors are not retried.
func (e *Engine) generateYAML(ctx context.Context, kind string, c call, out any) error {
	base := c.prompt
	var lastErr error
	for attempt := range maxParseAttempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("engine: %s: %w", kind, err)
		}
		if attempt > 0 {
			c.prompt = base + "\n\nRăspunsul anterior nu a fost YAML valid. Răspunde DOAR cu documentul YAML cerut."
		}
		text, err := e.generateText(ctx, c)
		if err != nil {
			return err
		}
		if lastErr = decodeYAML(text, out); lastErr == nil {
			return nil
		}
		e.log.Warn("unparseable reply", "kind", kind, "attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("engine: %s: %w", kind, lastErr)
}

// decodeYAML parses a model reply, tolerating a surrounding code fence.
func decodeYAML(text string, out any) error {
	clean := stripFences(text)
	if clean == "" {
		return errNoContent
	}
	if err := yaml.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("failed to parse YAML: %w\nOutput was: %s", err, clean)
	}
	return nil
}

func stripFences(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```yml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

func joinText(parts []genai.Part) string {
	var sb strings.Builder
	for _, p := range parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("engine: render %s: %w", name, err)
	}
	return buf.String(), nil
}

func likedTexts(history []models.DuelMessage) []string {
	var out []string
	for _, m := range history {
		if m.Author == models.AuthorAI && m.Liked {
			out = append(out, m.Text)
		}
	}
	return out
}

func lastPlayerStatement(history []models.DuelMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Author == models.AuthorPlayer {
			return history[i].Text
		}
	}
	return duel.DefaultDraft
}
