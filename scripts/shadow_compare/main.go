package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/analysis"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/repository"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/service"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
)

type target struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

// drift is one field whose remote and local values disagree.
type drift struct {
	Field  string
	Remote interface{}
	Local  interface{}
}

type comparison struct {
	Target         target
	Drifts         []drift
	Error          error
	DurationRemote time.Duration
	DurationLocal  time.Duration
}

// tolerance bounds numeric drift on score fields.
const tolerance = 1.0

// compared lists the fields both sides are required to carry.
var compared = map[string][]string{
	"performance":       {"overall_performance", "risk_level"},
	"class-performance": {"total_students", "student_analyses.student_id"},
	"at-risk":           {"total_students", "at_risk_students.student_id"},
}

type fetcher func(ctx context.Context, svc *service.InsightsService, id string) (interface{}, service.Source, error)

var fetchers = map[string]fetcher{
	"performance": func(ctx context.Context, svc *service.InsightsService, id string) (interface{}, service.Source, error) {
		res, err := svc.Performance(ctx, id, models.AssessmentFilter{})
		return res.Payload(), res.Source, err
	},
	"class-performance": func(ctx context.Context, svc *service.InsightsService, id string) (interface{}, service.Source, error) {
		res, err := svc.ClassPerformance(ctx, id, models.AssessmentFilter{})
		return res.Payload(), res.Source, err
	},
	"at-risk": func(ctx context.Context, svc *service.InsightsService, id string) (interface{}, service.Source, error) {
		res, err := svc.AtRisk(ctx, id, models.AssessmentFilter{})
		return res.Payload(), res.Source, err
	},
}

func main() {
	var (
		dataFile    string
		rulesFile   string
		scoringURL  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&dataFile, "data", "ai_training_data.json", "assessment JSON file")
	flag.StringVar(&rulesFile, "rules", "", "recommendation rules YAML (embedded defaults when empty)")
	flag.StringVar(&scoringURL, "scoring-url", "http://localhost:5000", "scoring service base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "scoring call timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load targets: %v\n", err)
		os.Exit(2)
	}

	remote, local, err := buildServices(dataFile, rulesFile, config.ScoringConfig{Enabled: true, BaseURL: strings.TrimRight(scoringURL, "/"), Timeout: timeout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build services: %v\n", err)
		os.Exit(2)
	}

	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)
	ctx := context.Background()
	for _, t := range targets {
		comp := compareTarget(ctx, remote, local, t)
		if comp.Error != nil || len(comp.Drifts) > 0 {
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(os.Stdout, comparisons)

	fmt.Printf("Breaking drifts: %d, Optional drifts: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	for _, t := range file.Targets {
		if _, ok := fetchers[t.Kind]; !ok {
			return nil, fmt.Errorf("unsupported kind %q for %s", t.Kind, t.ID)
		}
	}
	return file.Targets, nil
}

// buildServices returns one service that consults the scoring service and one
// that only runs the local engine, both over the same records.
func buildServices(dataFile, rulesFile string, scoring config.ScoringConfig) (*service.InsightsService, *service.InsightsService, error) {
	logr := zap.NewNop()
	book, err := analysis.LoadRulebook(rulesFile)
	if err != nil {
		return nil, nil, err
	}
	engine, err := analysis.NewEngine(book)
	if err != nil {
		return nil, nil, err
	}
	source := repository.NewAssessmentFileRepository(dataFile, logr, nil)
	scorer := service.NewScoringClient(scoring, nil, logr)
	remote := service.NewInsightsService(source, scorer, engine, nil, nil, logr)
	local := service.NewInsightsService(source, nil, engine, nil, nil, logr)
	return remote, local, nil
}

func compareTarget(ctx context.Context, remote, local *service.InsightsService, tgt target) comparison {
	comp := comparison{Target: tgt}
	fetch := fetchers[tgt.Kind]

	start := time.Now()
	remotePayload, source, err := fetch(ctx, remote, tgt.ID)
	comp.DurationRemote = time.Since(start)
	if err != nil {
		comp.Error = fmt.Errorf("remote: %w", err)
		return comp
	}
	if source != service.SourceRemote {
		comp.Error = errors.New("scoring service did not answer, local fallback served")
		return comp
	}

	start = time.Now()
	localPayload, _, err := fetch(ctx, local, tgt.ID)
	comp.DurationLocal = time.Since(start)
	if err != nil {
		comp.Error = fmt.Errorf("local: %w", err)
		return comp
	}

	remoteDoc, err := toDocument(remotePayload)
	if err != nil {
		comp.Error = fmt.Errorf("decode remote: %w", err)
		return comp
	}
	localDoc, err := toDocument(localPayload)
	if err != nil {
		comp.Error = fmt.Errorf("decode local: %w", err)
		return comp
	}
	comp.Drifts = diffFields(compared[tgt.Kind], remoteDoc, localDoc)
	return comp
}

func toDocument(payload interface{}) (map[string]interface{}, error) {
	raw, ok := payload.(json.RawMessage)
	if !ok {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// diffFields compares the named fields. "list.key" collects key from every
// element of list and compares the results as sets.
func diffFields(fields []string, remote, local map[string]interface{}) []drift {
	var out []drift
	for _, field := range fields {
		r, l := lookup(remote, field), lookup(local, field)
		if !equivalent(r, l) {
			out = append(out, drift{Field: field, Remote: r, Local: l})
		}
	}
	return out
}

func lookup(doc map[string]interface{}, field string) interface{} {
	list, key, nested := strings.Cut(field, ".")
	if !nested {
		return doc[field]
	}
	items, _ := doc[list].([]interface{})
	values := make([]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			values = append(values, m[key])
		}
	}
	return values
}

func equivalent(a, b interface{}) bool {
	if af, ok := a.(float64); ok {
		bf, ok := b.(float64)
		return ok && math.Abs(af-bf) <= tolerance
	}
	al, aok := a.([]interface{})
	bl, bok := b.([]interface{})
	if aok || bok {
		return reflect.DeepEqual(sortedStrings(al), sortedStrings(bl))
	}
	return reflect.DeepEqual(a, b)
}

func sortedStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	sort.Strings(out)
	return out
}

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Shadow Compare Report")
	fmt.Fprintln(w, "======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if len(res.Drifts) > 0 {
			status = "DRIFT"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Kind, res.Target.ID)
		fmt.Fprintf(w, "  Remote: %s | Local: %s | Critical: %t\n", res.DurationRemote, res.DurationLocal, res.Target.Critical)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
			continue
		}
		for _, d := range res.Drifts {
			fmt.Fprintf(w, "  %s: remote=%v local=%v\n", d.Field, d.Remote, d.Local)
		}
	}
}
