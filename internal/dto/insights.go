package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

var validate = validator.New()

// InsightQuery carries the record filter accepted by every insight route.
type InsightQuery struct {
	From           string `form:"from" json:"from"`
	To             string `form:"to" json:"to"`
	AssignmentType string `form:"assignment_type" json:"assignment_type" validate:"omitempty,max=64"`
}

// Filter validates the query and converts it to a record filter.
func (q InsightQuery) Filter() (models.AssessmentFilter, error) {
	if err := validate.Struct(q); err != nil {
		return models.AssessmentFilter{}, describe(err)
	}
	filter := models.AssessmentFilter{AssignmentType: strings.TrimSpace(q.AssignmentType)}
	if q.From != "" {
		d, err := models.ParseDate(q.From)
		if err != nil {
			return models.AssessmentFilter{}, fmt.Errorf("from: expected YYYY-MM-DD")
		}
		filter.From = &d
	}
	if q.To != "" {
		d, err := models.ParseDate(q.To)
		if err != nil {
			return models.AssessmentFilter{}, fmt.Errorf("to: expected YYYY-MM-DD")
		}
		filter.To = &d
	}
	if filter.From != nil && filter.To != nil && filter.From.After(filter.To.Time) {
		return models.AssessmentFilter{}, fmt.Errorf("from must not be after to")
	}
	return filter, nil
}

// ContentQuery adds the optional target topic of content recommendations.
type ContentQuery struct {
	InsightQuery
	Topic string `form:"topic" json:"topic" validate:"omitempty,max=128"`
}

// Validate checks the topic constraint.
func (q ContentQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return describe(err)
	}
	return nil
}

// LearningPathQuery adds a comma separated list of target topics.
type LearningPathQuery struct {
	InsightQuery
	Topics string `form:"topics" json:"topics"`
}

// TargetTopics splits the topics parameter, dropping blanks and duplicates.
func (q LearningPathQuery) TargetTopics() []string {
	if strings.TrimSpace(q.Topics) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, part := range strings.Split(q.Topics, ",") {
		topic := strings.TrimSpace(part)
		if topic == "" {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}

// ExportQuery selects the export renderer.
type ExportQuery struct {
	InsightQuery
	Format string `form:"format" json:"format" validate:"required,oneof=csv pdf"`
}

// Validate checks the format.
func (q ExportQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return describe(err)
	}
	return nil
}

func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}
