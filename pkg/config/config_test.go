package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, SourceFile, cfg.Assessments.Source)
	assert.Equal(t, "http://localhost:8001", cfg.Scoring.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Scoring.Timeout)
	assert.True(t, cfg.Scoring.Enabled)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ASSESSMENT_SOURCE", "DATABASE")
	v.Set("DB_DRIVER", "SQLite")
	v.Set("SCORING_SERVICE_URL", "http://scoring:9000/")
	v.Set("SCORING_TIMEOUT", "750ms")
	v.Set("INSIGHTS_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, SourceDatabase, cfg.Assessments.Source)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "http://scoring:9000", cfg.Scoring.BaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Scoring.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Insights.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestUnknownSourceFallsBackToFile(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ASSESSMENT_SOURCE", "s3")

	assert.Equal(t, SourceFile, fromViper(v).Assessments.Source)
}
