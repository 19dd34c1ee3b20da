package postgres

import (
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	result    repositories.ResultRepository
	test      repositories.TestRepository
	question  repositories.QuestionRepository
	candidate repositories.CandidateRepository
}

// NewRepository wires the postgres stores. Question lookups always hit the database:
// correction needs to see a deleted question as gone, so no cache sits in this path.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		result:    NewResultPostgreSQL(db),
		test:      NewTestPostgreSQL(db),
		question:  NewQuestionPostgreSQL(db),
		candidate: NewCandidatePostgreSQL(db),
	}
}

func (r *Repository) Result() repositories.ResultRepository       { return r.result }
func (r *Repository) Test() repositories.TestRepository           { return r.test }
func (r *Repository) Question() repositories.QuestionRepository   { return r.question }
func (r *Repository) Candidate() repositories.CandidateRepository { return r.candidate }
