package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

const assessmentColumns = `student_id, topic, score, max_score, CAST(assessed_on AS TEXT) AS assessed_on, assignment_type`

// AssessmentRepository reads assessment records from SQL storage.
type AssessmentRepository struct {
	db       *sqlx.DB
	sanitize *recordSanitizer
}

// NewAssessmentRepository constructs an AssessmentRepository.
func NewAssessmentRepository(db *sqlx.DB, logger *zap.Logger, observer MalformedObserver) *AssessmentRepository {
	return &AssessmentRepository{db: db, sanitize: newRecordSanitizer("database", logger, observer)}
}

type assessmentRow struct {
	StudentID      string          `db:"student_id"`
	Topic          sql.NullString  `db:"topic"`
	Score          sql.NullFloat64 `db:"score"`
	MaxScore       sql.NullFloat64 `db:"max_score"`
	Date           models.Date     `db:"assessed_on"`
	AssignmentType sql.NullString  `db:"assignment_type"`
}

func (row assessmentRow) record() models.AssessmentRecord {
	score := math.NaN()
	if row.Score.Valid {
		score = row.Score.Float64
	}
	return models.AssessmentRecord{
		StudentID:      row.StudentID,
		Topic:          row.Topic.String,
		Score:          score,
		MaxScore:       row.MaxScore.Float64,
		Date:           row.Date,
		AssignmentType: row.AssignmentType.String,
	}
}

// StudentRecords returns a student's records in insertion order.
func (r *AssessmentRepository) StudentRecords(ctx context.Context, studentID string, filter models.AssessmentFilter) ([]models.AssessmentRecord, error) {
	conditions, args := filterConditions([]string{"student_id = ?"}, []interface{}{studentID}, filter)
	records, err := r.query(ctx, conditions, args)
	if err != nil {
		return nil, fmt.Errorf("list student assessments: %w", err)
	}
	return records, nil
}

const classCondition = "substr(student_id, 1, length(?)) = ?"

// ClassRecords returns the records of every student whose id carries the
// class prefix, grouped per student in order of first appearance. Students
// whose records are all filtered out are kept with an empty slice.
func (r *AssessmentRepository) ClassRecords(ctx context.Context, classID string, filter models.AssessmentFilter) ([]models.StudentRecords, error) {
	prefix := ClassPrefix(classID)
	conditions, args := filterConditions([]string{classCondition}, []interface{}{prefix, prefix}, filter)
	records, err := r.query(ctx, conditions, args)
	if err != nil {
		return nil, fmt.Errorf("list class assessments: %w", err)
	}
	grouped := groupByStudent(records)
	if filter.IsZero() {
		return grouped, nil
	}

	roster, err := r.roster(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	byID := make(map[string]models.StudentRecords, len(grouped))
	for _, s := range grouped {
		byID[s.StudentID] = s
	}
	out := make([]models.StudentRecords, 0, len(roster))
	for _, id := range roster {
		s, ok := byID[id]
		if !ok {
			s = models.StudentRecords{StudentID: id, Records: []models.AssessmentRecord{}}
		}
		out = append(out, s)
	}
	return out, nil
}

// roster lists the class's student ids in order of first stored assessment.
func (r *AssessmentRepository) roster(ctx context.Context, prefix string) ([]string, error) {
	query := "SELECT student_id FROM assessments WHERE " + classCondition + " GROUP BY student_id ORDER BY MIN(id)"
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), prefix, prefix); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *AssessmentRepository) query(ctx context.Context, conditions []string, args []interface{}) ([]models.AssessmentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM assessments WHERE %s ORDER BY id", assessmentColumns, strings.Join(conditions, " AND "))

	var rows []assessmentRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	records := make([]models.AssessmentRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return r.sanitize.clean(records), nil
}

func filterConditions(conditions []string, args []interface{}, filter models.AssessmentFilter) ([]string, []interface{}) {
	if filter.From != nil {
		conditions = append(conditions, "assessed_on >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		conditions = append(conditions, "assessed_on <= ?")
		args = append(args, filter.To.String())
	}
	if filter.AssignmentType != "" {
		conditions = append(conditions, "LOWER(assignment_type) = ?")
		args = append(args, strings.ToLower(filter.AssignmentType))
	}
	return conditions, args
}
