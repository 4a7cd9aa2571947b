package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/duelul-ideilor/internal/config"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/engine"
	"github.com/tatianab/duelul-ideilor/internal/models"
	"github.com/tatianab/duelul-ideilor/internal/report"
	"google.golang.org/api/option"
)

const maxTurns = 10

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The judge scores both sides and plays the AI.
	judge, err := engine.NewEngine(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.ImageModel, nil)
	if err != nil {
		log.Fatalf("Failed to create judge engine: %v", err)
	}
	defer judge.Close()

	// Initialize the Player LLM
	playerClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create player client: %v", err)
	}
	defer playerClient.Close()
	playerModel := playerClient.GenerativeModel(cfg.Model)

	settings := models.NewSettings(models.DefaultTier)
	session, err := duel.NewSession(judge, settings, duel.Options{CallTimeout: cfg.OracleTimeout})
	if err != nil {
		log.Fatalf("Failed to start duel: %v", err)
	}
	fmt.Printf("--- Duel at tier %s, metaphor level %d ---\n\n", models.TierLabel(settings.Tier), settings.MetaphorLevel)

	for turn := 1; turn <= maxTurns; turn++ {
		fmt.Printf("--- Turn %d ---\n", turn)

		st := session.Snapshot()
		statement := getPlayerStatement(ctx, playerModel, st)
		fmt.Printf("Player: %s\n", statement)

		if err := session.SubmitPlayerText(ctx, statement); err != nil {
			fmt.Printf("Error playing turn: %v\n", err)
			break
		}

		st = session.Snapshot()
		msgs := models.DuelMessages(st.History)
		for _, m := range msgs[max(0, len(msgs)-2):] {
			fmt.Printf("%s [%d]: %s\n", m.Author.Label(), m.ScoreValue(), m.Text)
			if m.ScoreExplanation != "" {
				fmt.Printf("  %s\n", m.ScoreExplanation)
			}
		}
		fmt.Printf("Score: Player=%d, AI=%d\n\n", st.PlayerScore, st.AIScore)

		if st.IsOver {
			fmt.Printf("Duel Ended: %s\n", st.EndReason)
			break
		}
	}

	if session.Mode() != duel.ModeEnded {
		if err := session.EndDuel(ctx, "Simularea a atins numărul maxim de ture."); err != nil {
			log.Fatalf("Failed to end duel: %v", err)
		}
	}
	fmt.Println(report.Build(session.Snapshot(), session.Settings()))
}

func getPlayerStatement(ctx context.Context, model *genai.GenerativeModel, st duel.State) string {
	var history strings.Builder
	for _, m := range models.DuelMessages(st.History) {
		fmt.Fprintf(&history, "%s: %s\n", m.Author.Label(), m.Text)
	}

	prompt := fmt.Sprintf(`Joci "Duelul Ideilor". Fiecare replică începe cu "Eu sunt" și trebuie să anihileze, să transforme sau să depășească replica anterioară a adversarului.
Nivel metaforic: %d din 20.
Scor: Jucător %d - %d AI.

Istoric:
%s
Scrie următoarea ta replică. Returnează DOAR replica, fără comentarii.`,
		st.MetaphorLevel,
		st.PlayerScore,
		st.AIScore,
		history.String(),
	)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "Eu sunt liniștea de după furtună."
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "Eu sunt începutul."
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}
