package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for assessment dates.
const DateLayout = "2006-01-02"

const (
	DefaultMaxScore       = 100
	DefaultAssignmentType = "quiz"
)

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to a calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts plain dates as well as RFC3339 timestamps.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", raw)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON renders zero dates as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON parses a quoted date; null and empty strings leave the zero value.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE and TEXT columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("unsupported date type %T", src)
	}
}

func (d *Date) scanString(raw string) error {
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// AssessmentRecord is a single scored assessment for one student.
type AssessmentRecord struct {
	StudentID      string  `db:"student_id" json:"student_id" validate:"required"`
	Topic          string  `db:"topic" json:"topic" validate:"required"`
	Score          float64 `db:"score" json:"score" validate:"finite"`
	MaxScore       float64 `db:"max_score" json:"max_score" validate:"finite,gt=0"`
	Date           Date    `db:"assessed_on" json:"date"`
	AssignmentType string  `db:"assignment_type" json:"assignment_type"`
}

// UnmarshalJSON tolerates the camelCase keys produced by the LMS exporter and
// numeric strings for scores. Unusable scores decode as NaN so that the
// record is rejected by validation instead of failing the whole document.
func (r *AssessmentRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		StudentID         string          `json:"student_id"`
		StudentIDCamel    string          `json:"studentId"`
		Topic             string          `json:"topic"`
		Score             json.RawMessage `json:"score"`
		MaxScore          json.RawMessage `json:"max_score"`
		MaxScoreCamel     json.RawMessage `json:"maxScore"`
		Date              json.RawMessage `json:"date"`
		AssignmentType    string          `json:"assignment_type"`
		AssignmentTypeAlt string          `json:"assignmentType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.StudentID = firstNonEmpty(raw.StudentID, raw.StudentIDCamel)
	r.Topic = strings.TrimSpace(raw.Topic)
	r.Score = parseNumber(raw.Score, math.NaN())
	maxRaw := raw.MaxScore
	if len(maxRaw) == 0 {
		maxRaw = raw.MaxScoreCamel
	}
	r.MaxScore = parseNumber(maxRaw, DefaultMaxScore)
	r.AssignmentType = firstNonEmpty(raw.AssignmentType, raw.AssignmentTypeAlt, DefaultAssignmentType)

	r.Date = Date{}
	if len(raw.Date) > 0 {
		var d Date
		if err := d.UnmarshalJSON(raw.Date); err == nil {
			r.Date = d
		}
	}
	return nil
}

// Normalize fills defaults for optional fields.
func (r AssessmentRecord) Normalize() AssessmentRecord {
	if r.MaxScore == 0 {
		r.MaxScore = DefaultMaxScore
	}
	if r.AssignmentType == "" {
		r.AssignmentType = DefaultAssignmentType
	}
	r.Topic = strings.TrimSpace(r.Topic)
	return r
}

func parseNumber(raw json.RawMessage, missing float64) float64 {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return missing
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return math.NaN()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// AssessmentFilter narrows the records fed into an analysis.
type AssessmentFilter struct {
	From           *Date
	To             *Date
	AssignmentType string
}

// IsZero reports whether the filter matches everything.
func (f AssessmentFilter) IsZero() bool {
	return f.From == nil && f.To == nil && f.AssignmentType == ""
}

// Match reports whether a record passes the filter. Records without a date
// never match a date bound.
func (f AssessmentFilter) Match(r AssessmentRecord) bool {
	if f.AssignmentType != "" && !strings.EqualFold(f.AssignmentType, r.AssignmentType) {
		return false
	}
	if f.From != nil && (r.Date.IsZero() || r.Date.Before(f.From.Time)) {
		return false
	}
	if f.To != nil && (r.Date.IsZero() || r.Date.After(f.To.Time)) {
		return false
	}
	return true
}

// Apply returns the records matching the filter, preserving order.
func (f AssessmentFilter) Apply(records []AssessmentRecord) []AssessmentRecord {
	if f.IsZero() {
		return records
	}
	out := make([]AssessmentRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Key renders the filter for cache keys.
func (f AssessmentFilter) Key() string {
	if f.IsZero() {
		return "all"
	}
	parts := []string{"from=", "to=", "type=" + strings.ToLower(f.AssignmentType)}
	if f.From != nil {
		parts[0] += f.From.String()
	}
	if f.To != nil {
		parts[1] += f.To.String()
	}
	return strings.Join(parts, "|")
}

// StudentRecords groups the records of one student in insertion order.
type StudentRecords struct {
	StudentID string
	Records   []AssessmentRecord
}

// Scores returns the raw scores in insertion order.
func (s StudentRecords) Scores() []float64 {
	out := make([]float64, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Score
	}
	return out
}
