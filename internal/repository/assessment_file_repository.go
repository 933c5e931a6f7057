package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// assessmentSnapshot is the decoded content of the data file. order keeps the
// student keys in document order.
type assessmentSnapshot struct {
	order   []string
	records map[string][]models.AssessmentRecord
}

// AssessmentFileRepository serves assessment records from a JSON document of
// the form {"class1_student1": [record, ...], ...}. The document is decoded
// once and kept in memory until Reload is called.
type AssessmentFileRepository struct {
	path     string
	logger   *zap.Logger
	sanitize *recordSanitizer

	mu       sync.RWMutex
	snapshot *assessmentSnapshot
	group    singleflight.Group
}

// NewAssessmentFileRepository constructs a file backed repository.
func NewAssessmentFileRepository(path string, logger *zap.Logger, observer MalformedObserver) *AssessmentFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentFileRepository{path: path, logger: logger, sanitize: newRecordSanitizer("file", logger, observer)}
}

// Path returns the watched data file.
func (r *AssessmentFileRepository) Path() string {
	return r.path
}

// StudentRecords returns a student's records in document order.
func (r *AssessmentFileRepository) StudentRecords(ctx context.Context, studentID string, filter models.AssessmentFilter) ([]models.AssessmentRecord, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(snap.records[studentID]), nil
}

// ClassRecords returns every student whose key carries the class prefix.
// Students whose records are all filtered out are kept with an empty slice.
func (r *AssessmentFileRepository) ClassRecords(ctx context.Context, classID string, filter models.AssessmentFilter) ([]models.StudentRecords, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	prefix := ClassPrefix(classID)
	var out []models.StudentRecords
	for _, id := range snap.order {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		out = append(out, models.StudentRecords{StudentID: id, Records: filter.Apply(snap.records[id])})
	}
	return out, nil
}

// Reload re-reads the data file. The previous snapshot stays in place if the
// new one cannot be decoded.
func (r *AssessmentFileRepository) Reload(ctx context.Context) error {
	snap, err := r.read(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.snapshot = snap
	r.mu.Unlock()
	r.logger.Info("assessment snapshot reloaded", zap.String("path", r.path), zap.Int("students", len(snap.order)))
	return nil
}

func (r *AssessmentFileRepository) load(ctx context.Context) (*assessmentSnapshot, error) {
	r.mu.RLock()
	snap := r.snapshot
	r.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	v, err, _ := r.group.Do("snapshot", func() (interface{}, error) {
		r.mu.RLock()
		existing := r.snapshot
		r.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}
		fresh, err := r.read(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.snapshot = fresh
		r.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*assessmentSnapshot), nil
}

func (r *AssessmentFileRepository) read(ctx context.Context) (*assessmentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open assessment file: %w", err)
	}
	defer f.Close()

	snap, err := r.decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode assessment file %s: %w", r.path, err)
	}
	return snap, nil
}

// decode streams the top-level object so key order survives.
func (r *AssessmentFileRepository) decode(src io.Reader) (*assessmentSnapshot, error) {
	dec := json.NewDecoder(src)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	snap := &assessmentSnapshot{records: map[string][]models.AssessmentRecord{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected student key, got %v", tok)
		}

		var raw []json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("student %s: %w", key, err)
		}

		records := make([]models.AssessmentRecord, 0, len(raw))
		for _, item := range raw {
			var rec models.AssessmentRecord
			if err := json.Unmarshal(item, &rec); err != nil {
				// Undecodable entries fall through to the sanitizer as
				// empty records so they are counted as dropped.
				rec = models.AssessmentRecord{}
			}
			rec.StudentID = key
			records = append(records, rec)
		}

		if _, seen := snap.records[key]; !seen {
			snap.order = append(snap.order, key)
		}
		snap.records[key] = r.sanitize.clean(records)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return snap, nil
}
