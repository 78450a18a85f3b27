package core

import "testing"

func TestIsNumericDtype(t *testing.T) {
	tests := []struct {
		dtype string
		want  bool
	}{
		{"BIGINT", true},
		{"bigint", true},
		{"DECIMAL(18,3)", true},
		{"DOUBLE", true},
		{"VARCHAR", false},
		{"TIMESTAMP", false},
		{"BOOLEAN", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsNumericDtype(tt.dtype); got != tt.want {
			t.Errorf("IsNumericDtype(%q) = %v, want %v", tt.dtype, got, tt.want)
		}
	}
}

func TestIsTemporalDtype(t *testing.T) {
	tests := []struct {
		dtype string
		want  bool
	}{
		{"TIMESTAMP", true},
		{"TIMESTAMP WITH TIME ZONE", true},
		{"DATE", true},
		{"TIME", true},
		{"VARCHAR", false},
		{"BIGINT", false},
	}

	for _, tt := range tests {
		if got := IsTemporalDtype(tt.dtype); got != tt.want {
			t.Errorf("IsTemporalDtype(%q) = %v, want %v", tt.dtype, got, tt.want)
		}
	}
}

func TestChartTypeIsTimeSeries(t *testing.T) {
	if !ChartLine.IsTimeSeries() || !ChartBar.IsTimeSeries() {
		t.Error("line and bar charts should be time-series")
	}
	if ChartScatter.IsTimeSeries() {
		t.Error("scatter charts should not be time-series")
	}
}
