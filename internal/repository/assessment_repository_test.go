package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

var assessmentRowColumns = []string{"student_id", "topic", "score", "max_score", "assessed_on", "assignment_type"}

type dropCounter map[string]int

func (d dropCounter) RecordsDropped(source string, n int) { d[source] += n }

func newAssessmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssessmentRepositoryStudentRecords(t *testing.T) {
	db, mock, cleanup := newAssessmentMock(t)
	defer cleanup()
	drops := dropCounter{}
	repo := NewAssessmentRepository(db, nil, drops)

	rows := sqlmock.NewRows(assessmentRowColumns).
		AddRow("class1_student1", "algebra", 85.0, 100.0, "2024-01-15", "quiz").
		AddRow("class1_student1", "physics", nil, 100.0, "2024-01-16", "quiz").
		AddRow("class1_student1", "", 70.0, 100.0, "2024-01-17", "quiz").
		AddRow("class1_student1", "chemistry", 72.5, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, topic, score, max_score, CAST(assessed_on AS TEXT) AS assessed_on, assignment_type FROM assessments WHERE student_id = ? ORDER BY id")).
		WithArgs("class1_student1").
		WillReturnRows(rows)

	records, err := repo.StudentRecords(context.Background(), "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "algebra", records[0].Topic)
	assert.Equal(t, "2024-01-15", records[0].Date.String())
	assert.Equal(t, "chemistry", records[1].Topic)
	assert.Equal(t, float64(models.DefaultMaxScore), records[1].MaxScore)
	assert.Equal(t, models.DefaultAssignmentType, records[1].AssignmentType)
	assert.True(t, records[1].Date.IsZero())
	assert.Equal(t, 2, drops["database"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryStudentRecordsWithFilter(t *testing.T) {
	db, mock, cleanup := newAssessmentMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db, nil, nil)

	from, err := models.ParseDate("2024-01-10")
	require.NoError(t, err)
	to, err := models.ParseDate("2024-01-31")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE student_id = ? AND assessed_on >= ? AND assessed_on <= ? AND LOWER(assignment_type) = ? ORDER BY id")).
		WithArgs("s1", "2024-01-10", "2024-01-31", "exam").
		WillReturnRows(sqlmock.NewRows(assessmentRowColumns))

	records, err := repo.StudentRecords(context.Background(), "s1", models.AssessmentFilter{From: &from, To: &to, AssignmentType: "Exam"})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryClassRecords(t *testing.T) {
	db, mock, cleanup := newAssessmentMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db, nil, nil)

	rows := sqlmock.NewRows(assessmentRowColumns).
		AddRow("class1_student2", "algebra", 60.0, 100.0, "2024-01-15", "quiz").
		AddRow("class1_student1", "algebra", 90.0, 100.0, "2024-01-15", "quiz").
		AddRow("class1_student2", "physics", 65.0, 100.0, "2024-01-16", "quiz")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE substr(student_id, 1, length(?)) = ? ORDER BY id")).
		WithArgs("class1_", "class1_").
		WillReturnRows(rows)

	students, err := repo.ClassRecords(context.Background(), "class1", models.AssessmentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "class1_student2", students[0].StudentID)
	assert.Equal(t, []float64{60, 65}, students[0].Scores())
	assert.Equal(t, "class1_student1", students[1].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryClassRecordsKeepsFilteredOutStudents(t *testing.T) {
	db, mock, cleanup := newAssessmentMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE substr(student_id, 1, length(?)) = ? AND LOWER(assignment_type) = ? ORDER BY id")).
		WithArgs("class1_", "class1_", "exam").
		WillReturnRows(sqlmock.NewRows(assessmentRowColumns).
			AddRow("class1_student2", "algebra", 70.0, 100.0, "2024-01-15", "exam"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM assessments WHERE substr(student_id, 1, length(?)) = ? GROUP BY student_id ORDER BY MIN(id)")).
		WithArgs("class1_", "class1_").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("class1_student1").AddRow("class1_student2"))

	students, err := repo.ClassRecords(context.Background(), "class1", models.AssessmentFilter{AssignmentType: "exam"})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "class1_student1", students[0].StudentID)
	assert.Empty(t, students[0].Records)
	assert.Equal(t, []float64{70}, students[1].Scores())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryQueryError(t *testing.T) {
	db, mock, cleanup := newAssessmentMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db, nil, nil)

	mock.ExpectQuery("FROM assessments").WillReturnError(assert.AnError)

	_, err := repo.StudentRecords(context.Background(), "s1", models.AssessmentFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
