package analysis

import (
	"errors"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// ErrEmptyRecords is returned when an aggregate is requested over no records.
var ErrEmptyRecords = errors.New("analysis: no assessment records")

// TopicAggregate is the score group of one topic.
type TopicAggregate struct {
	Topic   string
	Scores  []float64
	Average float64
}

// Trend reports the direction of the topic's last scores.
func (t TopicAggregate) Trend() models.TrendDirection {
	return Direction(t.Scores)
}

// Aggregate is the numeric summary of one student's records.
type Aggregate struct {
	Count   int
	Sum     float64
	Mean    float64
	Overall float64
	Level   models.PerformanceLevel
	Topics  []TopicAggregate
	Weak    []string
	Strong  []string
}

// AggregateRecords computes the mean, level and topic bands of records. Topics keep
// the order of their first occurrence.
func AggregateRecords(records []models.AssessmentRecord, profile ThresholdProfile) (Aggregate, error) {
	if len(records) == 0 {
		return Aggregate{}, ErrEmptyRecords
	}

	agg := Aggregate{Count: len(records)}
	for _, r := range records {
		agg.Sum += r.Score
	}
	agg.Mean = agg.Sum / float64(agg.Count)
	agg.Overall = Round1(agg.Mean)
	agg.Level = Level(agg.Mean)
	agg.Topics = GroupByTopic(records)

	agg.Weak = []string{}
	agg.Strong = []string{}
	for _, t := range agg.Topics {
		switch {
		case profile.IsStrong(t.Average):
			agg.Strong = append(agg.Strong, t.Topic)
		case profile.IsWeak(t.Average):
			agg.Weak = append(agg.Weak, t.Topic)
		}
	}
	return agg, nil
}

// Level maps an average onto its performance band. Lower bounds are inclusive.
func Level(avg float64) models.PerformanceLevel {
	switch {
	case avg >= 90:
		return models.LevelExcellent
	case avg >= 75:
		return models.LevelGood
	case avg >= 60:
		return models.LevelAverage
	default:
		return models.LevelStruggling
	}
}

// GroupByTopic groups scores per topic in first-occurrence order.
func GroupByTopic(records []models.AssessmentRecord) []TopicAggregate {
	index := make(map[string]int)
	groups := make([]TopicAggregate, 0)
	for _, r := range records {
		i, ok := index[r.Topic]
		if !ok {
			i = len(groups)
			index[r.Topic] = i
			groups = append(groups, TopicAggregate{Topic: r.Topic})
		}
		groups[i].Scores = append(groups[i].Scores, r.Score)
	}
	for i := range groups {
		groups[i].Average = mean(groups[i].Scores)
	}
	return groups
}

// TopicBreakdown renders topic aggregates for responses.
func (a Aggregate) TopicBreakdown() []models.TopicPerformance {
	out := make([]models.TopicPerformance, len(a.Topics))
	for i, t := range a.Topics {
		out[i] = models.TopicPerformance{
			Topic:        t.Topic,
			AverageScore: Round1(t.Average),
			Attempts:     len(t.Scores),
			Trend:        t.Trend(),
		}
	}
	return out
}

func scoresOf(records []models.AssessmentRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Score
	}
	return out
}
