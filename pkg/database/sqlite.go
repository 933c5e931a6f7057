package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
)

// AssessmentSchema creates the assessments table when missing. The column
// names match what the repository selects on both drivers.
const AssessmentSchema = `CREATE TABLE IF NOT EXISTS assessments (
	id INTEGER PRIMARY KEY,
	student_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	score REAL NOT NULL,
	max_score REAL NOT NULL DEFAULT 100,
	assessed_on TEXT,
	assignment_type TEXT NOT NULL DEFAULT 'quiz'
);
CREATE INDEX IF NOT EXISTS idx_assessments_student ON assessments(student_id);`

// NewSQLite opens (creating if needed) a file-backed SQLite database and
// applies the assessment schema.
func NewSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = "assessments.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(AssessmentSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply assessment schema: %w", err)
	}

	return db, nil
}
