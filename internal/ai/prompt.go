package ai

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"text/template"

	"github.com/SAP-F-2025/correction-service/internal/models"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var gradingTemplate = template.Must(
	template.New("grading.tmpl").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(promptFS, "prompts/grading.tmpl"),
)

type promptData struct {
	QuestionType string
	TextType     string
	Instruction  string
	Options      []models.QuestionOption
	Response     string
	MaxScore     string
}

// RenderGradingPrompt fills the grading template for one answer.
func RenderGradingPrompt(question *models.Question, response string) (string, error) {
	textType := question.TextType
	if textType == "" {
		textType = models.TextTypePlain
	}

	data := promptData{
		QuestionType: question.Type.Label(),
		TextType:     string(textType),
		Instruction:  question.Instruction,
		Options:      question.Options,
		Response:     response,
		MaxScore:     strconv.FormatFloat(question.MaxScore, 'f', -1, 64),
	}

	var buf bytes.Buffer
	if err := gradingTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render grading prompt: %w", err)
	}
	return buf.String(), nil
}
