package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FreeText       QuestionType = "free_text"
	Exercise       QuestionType = "exercise"
)

type TextType string

const (
	TextTypePlain TextType = "text"
	TextTypeCode  TextType = "code"
)

type QuestionOption struct {
	Text  string `json:"text" validate:"required"`
	Valid bool   `json:"valid"`
}

type Question struct {
	ID          uint                                `json:"id" gorm:"primaryKey"`
	Type        QuestionType                        `json:"type" gorm:"type:varchar(30);not null;index" validate:"required,question_type"`
	Instruction string                              `json:"instruction" gorm:"type:text;not null" validate:"required"`
	MaxScore    float64                             `json:"max_score" gorm:"not null;default:0" validate:"gte=0"`
	CategoryID  *uint                               `json:"category_id,omitempty" gorm:"index"`
	Options     datatypes.JSONSlice[QuestionOption] `json:"options,omitempty" gorm:"type:jsonb"`
	TextType    TextType                            `json:"text_type" gorm:"type:varchar(10);default:text"`
	Time        int                                 `json:"time"` // seconds allowed to answer

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Category *TestCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Question) TableName() string {
	return "questions"
}

// SingleValidOption returns the index of the only option flagged valid.
// ok is false when there are no options or when zero or several are valid.
func (q *Question) SingleValidOption() (index int, ok bool) {
	index = -1
	for i, opt := range q.Options {
		if !opt.Valid {
			continue
		}
		if index >= 0 {
			return -1, false
		}
		index = i
	}
	return index, index >= 0
}

// CategoryKey is the bucket key used for category sub-scores, empty when uncategorized.
func (q *Question) CategoryKey() string {
	if q.CategoryID == nil {
		return ""
	}
	return uintToString(*q.CategoryID)
}

func (t QuestionType) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}
