package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRepository_QuestionLookupsAreUncached(t *testing.T) {
	repo := NewRepository(nil)

	assert.IsType(t, &QuestionPostgreSQL{}, repo.Question())
	assert.IsType(t, &ResultPostgreSQL{}, repo.Result())
}
