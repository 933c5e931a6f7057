package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/analysis"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/dto"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/repository"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/service"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/database"
)

type cliOptions struct {
	dataFile  string
	source    string
	rulesFile string
	remote    bool
	query     dto.InsightQuery
}

type studentInsight func(ctx context.Context, svc *service.InsightsService, id string, filter models.AssessmentFilter, topics []string) (interface{}, service.Source, error)

func studentCall[T any](fn func(*service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[T], error)) studentInsight {
	return func(ctx context.Context, svc *service.InsightsService, id string, filter models.AssessmentFilter, _ []string) (interface{}, service.Source, error) {
		res, err := fn(svc)(ctx, id, filter)
		if err != nil {
			return nil, "", err
		}
		return res.Payload(), res.Source, nil
	}
}

var studentInsights = map[string]studentInsight{
	"performance": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.PerformanceSummary], error) {
		return s.Performance
	}),
	"trends": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.StudentTrendReport], error) {
		return s.Trends
	}),
	"behavior": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.BehaviorReport], error) {
		return s.Behavior
	}),
	"predictions": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.PredictionReport], error) {
		return s.Predictions
	}),
	"study-plan": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.StudyPlanReport], error) {
		return s.StudyPlan
	}),
	"tutoring": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.TutoringReport], error) {
		return s.Tutoring
	}),
	"adaptive-learning": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.AdaptiveReport], error) {
		return s.Adaptive
	}),
	"comprehensive": studentCall(func(s *service.InsightsService) func(context.Context, string, models.AssessmentFilter) (service.Result[models.ComprehensiveReport], error) {
		return s.Comprehensive
	}),
	"content-recommendations": func(ctx context.Context, svc *service.InsightsService, id string, filter models.AssessmentFilter, topics []string) (interface{}, service.Source, error) {
		topic := ""
		if len(topics) > 0 {
			topic = topics[0]
		}
		res, err := svc.ContentRecommendations(ctx, id, filter, topic)
		if err != nil {
			return nil, "", err
		}
		return res.Payload(), res.Source, nil
	},
	"learning-path": func(ctx context.Context, svc *service.InsightsService, id string, filter models.AssessmentFilter, topics []string) (interface{}, service.Source, error) {
		res, err := svc.LearningPath(ctx, id, filter, topics)
		if err != nil {
			return nil, "", err
		}
		return res.Payload(), res.Source, nil
	},
}

func insightNames() []string {
	names := make([]string, 0, len(studentInsights))
	for name := range studentInsights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "insightsctl",
		Short:         "Inspect LMS performance insights from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.dataFile, "data", "", "assessment JSON file (defaults to ASSESSMENT_DATA_FILE)")
	root.PersistentFlags().StringVar(&opts.source, "source", "", "assessment source: file or database (defaults to ASSESSMENT_SOURCE)")
	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "recommendation rules YAML (defaults to RECOMMENDATION_RULES_FILE)")
	root.PersistentFlags().BoolVar(&opts.remote, "remote", false, "consult the scoring service before falling back to local analysis")
	root.PersistentFlags().StringVar(&opts.query.From, "from", "", "earliest assessment date (YYYY-MM-DD)")
	root.PersistentFlags().StringVar(&opts.query.To, "to", "", "latest assessment date (YYYY-MM-DD)")
	root.PersistentFlags().StringVar(&opts.query.AssignmentType, "assignment-type", "", "only use assessments of this type")

	root.AddCommand(newStudentCmd(opts), newClassCmd(opts), newAtRiskCmd(opts), newRulesCmd())
	return root
}

func newStudentCmd(opts *cliOptions) *cobra.Command {
	var (
		insight string
		topics  []string
	)
	cmd := &cobra.Command{
		Use:   "student <studentId>",
		Short: "Print one insight for a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			call, ok := studentInsights[insight]
			if !ok {
				return fmt.Errorf("unknown insight %q (one of: %s)", insight, strings.Join(insightNames(), ", "))
			}
			return withInsights(cmd, opts, func(ctx context.Context, svc *service.InsightsService, filter models.AssessmentFilter) error {
				payload, source, err := call(ctx, svc, args[0], filter, topics)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), source, payload)
			})
		},
	}
	cmd.Flags().StringVar(&insight, "insight", "performance", "insight to compute: "+strings.Join(insightNames(), ", "))
	cmd.Flags().StringSliceVar(&topics, "topic", nil, "target topics for content-recommendations and learning-path")
	return cmd
}

func newClassCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "class <classId>",
		Short: "Print the class performance summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInsights(cmd, opts, func(ctx context.Context, svc *service.InsightsService, filter models.AssessmentFilter) error {
				res, err := svc.ClassPerformance(ctx, args[0], filter)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res.Source, res.Payload())
			})
		},
	}
}

func newAtRiskCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "at-risk <classId>",
		Short: "List at-risk students of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInsights(cmd, opts, func(ctx context.Context, svc *service.InsightsService, filter models.AssessmentFilter) error {
				res, err := svc.AtRisk(ctx, args[0], filter)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res.Source, res.Payload())
			})
		},
	}
}

func newRulesCmd() *cobra.Command {
	rules := &cobra.Command{
		Use:   "rules",
		Short: "Work with recommendation rule files",
	}
	rules.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Compile a rules file and list its rule sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := analysis.LoadRulebook(args[0])
			if err != nil {
				return err
			}
			if _, err := analysis.NewEngine(book); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", strings.Join(book.Sets(), ", "))
			return nil
		},
	})
	return rules
}

func withInsights(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, svc *service.InsightsService, filter models.AssessmentFilter) error) error {
	filter, err := opts.query.Filter()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.dataFile != "" {
		cfg.Assessments.DataFile = opts.dataFile
		if opts.source == "" {
			opts.source = config.SourceFile
		}
	}
	if opts.source != "" {
		cfg.Assessments.Source = opts.source
	}
	if opts.rulesFile != "" {
		cfg.Insights.RulesFile = opts.rulesFile
	}

	logr := zap.NewNop()
	metrics := service.NewMetricsService()

	var source service.AssessmentSource
	switch cfg.Assessments.Source {
	case config.SourceDatabase:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		source = repository.NewAssessmentRepository(db, logr, metrics)
	case config.SourceFile, "":
		source = repository.NewAssessmentFileRepository(cfg.Assessments.DataFile, logr, metrics)
	default:
		return fmt.Errorf("unknown assessment source %q", cfg.Assessments.Source)
	}

	book, err := analysis.LoadRulebook(cfg.Insights.RulesFile)
	if err != nil {
		return err
	}
	engine, err := analysis.NewEngine(book)
	if err != nil {
		return err
	}

	var scorer service.Scorer
	if opts.remote {
		scorer = service.NewScoringClient(cfg.Scoring, metrics, logr)
	}
	svc := service.NewInsightsService(source, scorer, engine, nil, metrics, logr)
	return fn(cmd.Context(), svc, filter)
}

type output struct {
	Source  service.Source `json:"source"`
	Payload interface{}    `json:"data"`
}

func printJSON(w io.Writer, source service.Source, payload interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{Source: source, Payload: payload})
}
