package analysis

import (
	"context"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// studentRollup is the per-student result folded into a class summary.
type studentRollup struct {
	id      string
	records []models.AssessmentRecord
	agg     Aggregate
}

// classTotals is the accumulator of the class fold.
type classTotals struct {
	sum   float64
	count int
}

func (t classTotals) add(r studentRollup) classTotals {
	return classTotals{sum: t.sum + r.agg.Sum, count: t.count + r.agg.Count}
}

func (t classTotals) mean() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}

func fold[T, A any](items []T, init A, step func(A, T) A) A {
	acc := init
	for _, item := range items {
		acc = step(acc, item)
	}
	return acc
}

// rollup aggregates every student with records concurrently. Results land in
// input order regardless of completion order.
func rollup(ctx context.Context, students []models.StudentRecords, profile ThresholdProfile) ([]studentRollup, error) {
	active := make([]models.StudentRecords, 0, len(students))
	for _, s := range students {
		if len(s.Records) > 0 {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil, ErrEmptyRecords
	}

	out := make([]studentRollup, len(active))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range active {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			agg, err := AggregateRecords(s.Records, profile)
			if err != nil {
				return err
			}
			out[i] = studentRollup{id: s.StudentID, records: s.Records, agg: agg}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// rankByAverage returns a copy ordered by mean descending. Ties keep input order.
func rankByAverage(rollups []studentRollup) []studentRollup {
	ranked := slices.Clone(rollups)
	slices.SortStableFunc(ranked, func(a, b studentRollup) int {
		switch {
		case a.agg.Mean > b.agg.Mean:
			return -1
		case a.agg.Mean < b.agg.Mean:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

// OverallTrend compares the upper and lower halves of averages sorted
// descending. The upper half holds ceil(n/2) entries.
func OverallTrend(sortedDesc []float64) models.TrendDirection {
	n := len(sortedDesc)
	if n < 2 {
		return models.TrendStable
	}
	split := int(math.Ceil(float64(n) / 2))
	upper := mean(sortedDesc[:split])
	lower := mean(sortedDesc[split:])
	switch {
	case upper-lower > 15:
		return models.TrendImproving
	case lower < 65:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// TopCount is ceil(n * 0.3).
func TopCount(n int) int {
	return int(math.Ceil(float64(n) * 0.3))
}

// Class builds the performance rollup of a class. Students without records
// are counted in TotalStudents but excluded from every statistic.
func (e *Engine) Class(ctx context.Context, classID string, students []models.StudentRecords) (models.ClassSummary, error) {
	rollups, err := rollup(ctx, students, ProfileClasswide)
	if err != nil {
		return models.ClassSummary{}, err
	}

	totals := fold(rollups, classTotals{}, classTotals.add)
	ranked := rankByAverage(rollups)

	averages := make([]float64, len(ranked))
	top := make([]string, 0, TopCount(len(ranked)))
	attention := []string{}
	for i, r := range ranked {
		averages[i] = r.agg.Mean
		if i < TopCount(len(ranked)) {
			top = append(top, r.id)
		}
		if r.agg.Mean < 70 {
			attention = append(attention, r.id)
		}
	}

	allRecords := fold(rollups, []models.AssessmentRecord(nil), func(acc []models.AssessmentRecord, r studentRollup) []models.AssessmentRecord {
		return append(acc, r.records...)
	})
	topics := GroupByTopic(allRecords)
	topicPerformance := make(map[string]models.ClassTopicPerformance, len(topics))
	order := make([]string, len(topics))
	for i, t := range topics {
		order[i] = t.Topic
		topicPerformance[t.Topic] = models.ClassTopicPerformance{
			AverageScore:    Round1(t.Average),
			Trend:           t.Trend(),
			Recommendations: e.rules.Apply(RuleSetTopic, Facts{Average: t.Average, Topic: t.Topic}),
		}
	}

	analyses := make([]models.StudentAnalysis, len(rollups))
	for i, r := range rollups {
		analyses[i] = models.StudentAnalysis{
			StudentID:          r.id,
			OverallPerformance: r.agg.Overall,
			PerformanceLevel:   r.agg.Level,
			RiskLevel:          ClassifyRisk(r.agg.Mean, ProfileStudent),
			WeakTopics:         r.agg.Weak,
		}
	}

	return models.ClassSummary{
		ClassID:          classID,
		TotalStudents:    len(students),
		ClassAverage:     Round1(totals.mean()),
		TopPerformers:    top,
		NeedsAttention:   attention,
		TopicPerformance: topicPerformance,
		TopicOrder:       order,
		OverallTrend:     OverallTrend(averages),
		RiskLevel:        ClassifyRisk(totals.mean(), ProfileClasswide),
		StudentAnalyses:  analyses,
	}, nil
}
