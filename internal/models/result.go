package models

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
)

type ResultState string

const (
	ResultPending    ResultState = "pending"
	ResultInProgress ResultState = "in_progress"
	ResultFinish     ResultState = "finish"
)

// Answer is one candidate response held inside a Result. Score and Comment are set by correction.
type Answer struct {
	QuestionID uint    `json:"question_id"`
	Response   string  `json:"response"`
	Score      float64 `json:"score"`
	Comment    string  `json:"comment"`
}

type CategoryScore struct {
	CategoryID string  `json:"category_id"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
}

type Result struct {
	ID               uint                               `json:"id" gorm:"primaryKey"`
	TestID           uint                               `json:"test_id" gorm:"not null;index"`
	CandidateID      uint                               `json:"candidate_id" gorm:"not null;index"`
	State            ResultState                        `json:"state" gorm:"type:varchar(20);default:pending;index" validate:"omitempty,result_state"`
	Answers          datatypes.JSONSlice[Answer]        `json:"answers" gorm:"type:jsonb"`
	Score            float64                            `json:"score" gorm:"default:0"`
	ScoresByCategory datatypes.JSONSlice[CategoryScore] `json:"scores_by_category" gorm:"type:jsonb"`
	StartTime        *time.Time                         `json:"start_time"`
	EndTime          *time.Time                         `json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Result) TableName() string {
	return "test_results"
}

// FindAnswer returns the stored answer for questionID, or nil.
func (r *Result) FindAnswer(questionID uint) *Answer {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == questionID {
			return &r.Answers[i]
		}
	}
	return nil
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
