package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "codeapply", configBaseName)
	assert.Equal(t, "codeapply.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "no-report", noReportFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "verbose", verboseFlagName)
	assert.Equal(t, "target", targetFlagName)
	assert.Equal(t, "threshold", thresholdFlagName)
	assert.Equal(t, "force", forceFlagName)
	assert.Equal(t, "dry-run", dryRunFlagName)
	assert.Equal(t, "match.threshold", thresholdConfigKey)
	assert.Equal(t, "apply.force", forceConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, ".codeapply-reports", defaultReportsDir)
	assert.Equal(t, false, defaultNoReport)
	assert.Equal(t, 0.7, defaultThreshold)
	assert.Equal(t, "CODEAPPLY", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty uses default", "", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"mixed case", "DeBuG", slog.LevelDebug},
		{"numeric", "-4", slog.LevelDebug},
		{"unknown uses default", "loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}
