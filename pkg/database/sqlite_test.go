package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
)

func TestNewSQLiteAppliesSchema(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "lms.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO assessments (student_id, topic, score, assessed_on) VALUES (?, ?, ?, ?)`, "class1_student1", "algebra", 88.5, "2024-01-15")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM assessments`))
	assert.Equal(t, 1, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "lms", Password: "p@ss word", Name: "lms"})

	assert.Contains(t, dsn, "postgres://lms:p%40ss%20word@db:5432/lms?")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "application_name=lms-insights")
	assert.Contains(t, dsn, "connect_timeout=5")
}
