package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestQuestion struct {
	QuestionID uint `json:"question_id"`
	Order      int  `json:"order"`
}

type Test struct {
	ID          uint                              `json:"id" gorm:"primaryKey"`
	Title       string                            `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string                           `json:"description" gorm:"type:text"`
	CompanyID   *uint                             `json:"company_id" gorm:"index"`
	Questions   datatypes.JSONSlice[TestQuestion] `json:"questions" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Test) TableName() string {
	return "tests"
}

type TestCategory struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TestCategory) TableName() string {
	return "test_categories"
}
