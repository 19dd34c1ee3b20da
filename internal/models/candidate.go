package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Contact struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Firstname string `json:"firstname" gorm:"size:100"`
	Lastname  string `json:"lastname" gorm:"size:100"`
	Email     string `json:"email" gorm:"size:255;index" validate:"omitempty,email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (c *Contact) FullName() string {
	return strings.TrimSpace(c.Firstname + " " + c.Lastname)
}

type Candidate struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	ContactID uint `json:"contact_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Contact *Contact `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
}

func (Candidate) TableName() string {
	return "candidates"
}
