// Package narrative turns a completed analysis into a short prose summary
// for the report cover. It is optional: without an API key the feature is
// disabled, never fatal.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jbadenas/pistaclima/internal/models"
)

// Generator writes agronomic narratives using OpenAI's API.
type Generator struct {
	client openai.Client
	model  openai.ChatModel
}

// NewGenerator creates a narrative generator. It reads the OPENAI_API_KEY
// environment variable for authentication.
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Generate produces a short Spanish-language narrative for an analysis.
func (g *Generator) Generate(ctx context.Context, run *models.AnalysisRun) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Eres un ingeniero agrónomo especializado en el cultivo del pistacho. " +
				"Redacta un resumen breve (dos párrafos) del análisis climático de una parcela, en tono técnico pero claro. " +
				"No inventes datos que no estén en el análisis."),
			openai.UserMessage(buildPrompt(run)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(run *models.AnalysisRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Parcela: %s (lat %.4f, lon %.4f)\n", run.Location.Name, run.Location.Latitude, run.Location.Longitude)
	fmt.Fprintf(&b, "Serie analizada: %s a %s (%d días, %d años)\n", run.StartDate, run.EndDate, run.Summary.TotalDays, run.Summary.YearsCount)
	fmt.Fprintf(&b, "Puntuación de aptitud: %d/100\n", run.Suitability.Score)
	fmt.Fprintf(&b, "Horas frío anuales: %.0f; GDD: %.0f; días de helada: %.1f; déficit hídrico: %.0f mm\n",
		run.Summary.TotalChillHours, run.Summary.TotalGDD, run.Summary.FrostDays, run.Summary.WaterDeficit)
	fmt.Fprintf(&b, "Nivel de riesgo: %s\n", run.Report.RiskLevel)
	if len(run.Report.TopVarieties) > 0 {
		fmt.Fprintf(&b, "Variedades recomendadas: %s\n", strings.Join(run.Report.TopVarieties, ", "))
	}
	for _, w := range run.Suitability.Warnings {
		fmt.Fprintf(&b, "Aviso: %s\n", w)
	}
	return b.String()
}
