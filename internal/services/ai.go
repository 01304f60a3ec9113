package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/study-tracker-api/internal/models"
)

type AIService struct {
	client *openai.Client
}

// GeneratedTask is a task draft extracted from free text.
type GeneratedTask struct {
	Subject     string          `json:"subject"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	DueDate     string          `json:"due_date"`
	Priority    models.Priority `json:"priority"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateTasksFromText extracts school assignments from text using OpenAI GPT
func (s *AIService) GenerateTasksFromText(ctx context.Context, text, today string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`Eres un asistente que extrae tareas escolares. Extrae las tareas concretas del siguiente texto.

Fecha de hoy: %s

Texto:
%s

Devuelve un arreglo JSON con este formato:
[
  {
    "subject": "materia (por ejemplo Matemáticas)",
    "type": "tipo de actividad (Tarea, Examen, Proyecto, ...)",
    "description": "descripción breve",
    "due_date": "fecha de entrega en formato YYYY-MM-DD",
    "priority": "alta, media o baja"
  }
]

Notas:
- Si no hay tareas devuelve un arreglo vacío []
- Convierte expresiones relativas ("mañana", "la próxima semana") en fechas concretas
- Si no se menciona una fecha usa la fecha de hoy
- Devuelve solo JSON, sin texto adicional`, today, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

// parseGeneratedTasks decodes the model reply, tolerating a markdown code
// fence around the JSON.
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(trimmed), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
