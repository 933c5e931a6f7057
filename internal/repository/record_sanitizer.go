package repository

import (
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// MalformedObserver is told how many records a source dropped during a load.
type MalformedObserver interface {
	RecordsDropped(source string, n int)
}

// recordSanitizer drops records that cannot be analysed: missing identifiers,
// empty topics and non-finite scores.
type recordSanitizer struct {
	source   string
	validate *validator.Validate
	logger   *zap.Logger
	observer MalformedObserver
}

func newRecordSanitizer(source string, logger *zap.Logger, observer MalformedObserver) *recordSanitizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 && f.Kind() != reflect.Float32 {
			return false
		}
		x := f.Float()
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	})
	return &recordSanitizer{source: source, validate: v, logger: logger, observer: observer}
}

// clean normalises records and returns the valid ones in their original order.
func (s *recordSanitizer) clean(records []models.AssessmentRecord) []models.AssessmentRecord {
	out := make([]models.AssessmentRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		r = r.Normalize()
		if err := s.validate.Struct(r); err != nil {
			dropped++
			s.logger.Warn("dropping malformed assessment record",
				zap.String("source", s.source),
				zap.String("student_id", r.StudentID),
				zap.String("topic", r.Topic),
				zap.Error(err),
			)
			continue
		}
		out = append(out, r)
	}
	if dropped > 0 && s.observer != nil {
		s.observer.RecordsDropped(s.source, dropped)
	}
	return out
}

// groupByStudent splits records into per-student slices, ordered by first
// appearance.
func groupByStudent(records []models.AssessmentRecord) []models.StudentRecords {
	index := map[string]int{}
	var out []models.StudentRecords
	for _, r := range records {
		i, ok := index[r.StudentID]
		if !ok {
			i = len(out)
			index[r.StudentID] = i
			out = append(out, models.StudentRecords{StudentID: r.StudentID})
		}
		out[i].Records = append(out[i].Records, r)
	}
	return out
}

// ClassPrefix returns the student id prefix shared by members of a class.
func ClassPrefix(classID string) string {
	return classID + "_"
}
