package postgres

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds statements without a server and records every UPDATE it would send.
func dryRunDB(t *testing.T) (*gorm.DB, *[]*gorm.Statement) {
	t.Helper()
	db, err := gorm.Open(pgdriver.New(pgdriver.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	var updates []*gorm.Statement
	err = db.Callback().Update().After("gorm:update").Register("test:capture", func(tx *gorm.DB) {
		updates = append(updates, tx.Statement)
	})
	require.NoError(t, err)
	return db, &updates
}

func TestResultPostgreSQL_SaveAnswers_SkipsFinishedResults(t *testing.T) {
	db, updates := dryRunDB(t)
	repo := NewResultPostgreSQL(db)

	_ = repo.SaveAnswers(context.Background(), nil, &models.Result{
		ID:      100,
		State:   models.ResultInProgress,
		Answers: []models.Answer{{QuestionID: 1, Response: "Paris"}},
	})

	require.Len(t, *updates, 1)
	stmt := (*updates)[0]
	assert.Contains(t, stmt.SQL.String(), "state <> $")
	assert.Contains(t, stmt.Vars, models.ResultFinish)
}
