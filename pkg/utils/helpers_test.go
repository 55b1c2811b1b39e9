package utils_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cvforge/pkg/utils"
)

func TestGenerateIDs(t *testing.T) {
	require.NotEqual(t, utils.GenerateRequestID(), utils.GenerateRequestID())
	require.True(t, strings.HasPrefix(utils.GenerateTaskID(), "task_"))
	require.True(t, strings.HasPrefix(utils.GenerateExportID(), "export_"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "sub-second", in: 250 * time.Millisecond, want: "250ms"},
		{name: "seconds", in: 2500 * time.Millisecond, want: "2.50s"},
		{name: "minutes", in: 90 * time.Second, want: "1.5m"},
		{name: "hours", in: 90 * time.Minute, want: "1.5h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, utils.FormatDuration(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", utils.Truncate("short", 10))
	require.Equal(t, "hel...", utils.Truncate("hello world", 3))
	require.Equal(t, "héé...", utils.Truncate("hééllo", 3))
}

func TestContains(t *testing.T) {
	require.True(t, utils.Contains([]string{"a", "b"}, "b"))
	require.False(t, utils.Contains([]string{"a", "b"}, "c"))
	require.False(t, utils.Contains(nil, "a"))
}

func TestGetStringOrDefault(t *testing.T) {
	require.Equal(t, "x", utils.GetStringOrDefault("x", "d"))
	require.Equal(t, "d", utils.GetStringOrDefault("", "d"))
}

func TestCustomError(t *testing.T) {
	err := utils.NewValidationError("field missing")

	require.Equal(t, 400, err.Code)
	require.Contains(t, err.Error(), "field missing")

	parseErr := utils.NewParseFailureError("bad json")
	require.Equal(t, 502, parseErr.Code)
}
