package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/calebshay/trellis/internal/observability"
)

// --- parseSinceDuration unit tests ---

func TestParseSinceDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{"empty defaults to 7d", "", false, ""},
		{"whitespace defaults to 7d", "  ", false, ""},
		{"valid 7d", "7d", false, ""},
		{"valid 30d", "30d", false, ""},
		{"valid 24h", "24h", false, ""},
		{"invalid suffix", "abc", true, "unsupported duration format"},
		{"invalid day number", "xd", true, "invalid day duration"},
		{"invalid hour number", "yh", true, "invalid hour duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSinceDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// --- metricsCmd tests ---

type metricsMock struct {
	calcFn func(since time.Time) (*observability.Metrics, error)
}

func (m *metricsMock) Calculate(since time.Time) (*observability.Metrics, error) {
	return m.calcFn(since)
}

func TestMetricsCmd_NilCalculator(t *testing.T) {
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()
	MetricsCalc = nil

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil {
		t.Fatal("expected error when MetricsCalc is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMetricsCmd_Table(t *testing.T) {
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()

	now := time.Now().UTC()
	MetricsCalc = &metricsMock{
		calcFn: func(since time.Time) (*observability.Metrics, error) {
			return &observability.Metrics{
				GardensCreated:   1,
				GardensOptimized: 2,
				MeanUtilization:  55.5,
				TasksCompleted:   4,
				TasksByType:      map[string]int{"watering": 3, "fertilizing": 1},
				EventCount:       9,
				OldestEvent:      &now,
				NewestEvent:      &now,
			}, nil
		},
	}

	if err := metricsCmd.RunE(metricsCmd, []string{}); err != nil {
		t.Fatalf("metrics: %v", err)
	}
}

func TestMetricsCmd_JSON(t *testing.T) {
	orig := MetricsCalc
	origJSON := metricsJSON
	defer func() {
		MetricsCalc = orig
		metricsJSON = origJSON
	}()

	MetricsCalc = &metricsMock{
		calcFn: func(since time.Time) (*observability.Metrics, error) {
			return &observability.Metrics{EventCount: 3}, nil
		},
	}
	metricsJSON = true

	if err := metricsCmd.RunE(metricsCmd, []string{}); err != nil {
		t.Fatalf("metrics --json: %v", err)
	}
}
