package models

// CorrectionAnswer selects one stored answer for (re-)correction.
type CorrectionAnswer struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Text       string `json:"text"`
}

// CorrectionRequest is the work item that triggers correction of a Result.
type CorrectionRequest struct {
	ResultID uint               `json:"result_id" validate:"required"`
	TestID   uint               `json:"test_id" validate:"required"`
	Answers  []CorrectionAnswer `json:"answers" validate:"required,min=1,dive"`
	State    ResultState        `json:"state" validate:"required,result_state"`
}

// Find returns the requested answer for questionID, or nil.
func (r *CorrectionRequest) Find(questionID uint) *CorrectionAnswer {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == questionID {
			return &r.Answers[i]
		}
	}
	return nil
}

type ScorerKind string

const (
	ScorerRule ScorerKind = "rule"
	ScorerAI   ScorerKind = "ai"
)

// AnswerCorrection records how a single answer was handled during a correction pass.
type AnswerCorrection struct {
	QuestionID uint       `json:"question_id"`
	Scorer     ScorerKind `json:"scorer,omitempty"`
	Score      float64    `json:"score"`
	MaxScore   float64    `json:"max_score"`
	Skipped    bool       `json:"skipped"`
	Degraded   bool       `json:"degraded"`
}

type CorrectionOutcome struct {
	ResultID         uint               `json:"result_id"`
	Score            float64            `json:"score"`
	MaxScore         float64            `json:"max_score"`
	Percentage       int                `json:"percentage"`
	ScoresByCategory []CategoryScore    `json:"scores_by_category"`
	Answers          []AnswerCorrection `json:"answers"`
	Notified         bool               `json:"notified"`
}
