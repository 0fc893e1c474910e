package cli

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestWithCleanup(t *testing.T) {
	runErr := errors.New("run failed")
	cleanupErr := errors.New("close failed")

	tests := []struct {
		name       string
		runErr     error
		cleanupErr error
		want       error
	}{
		{name: "both succeed"},
		{name: "run fails", runErr: runErr, want: runErr},
		{name: "cleanup fails", cleanupErr: cleanupErr, want: cleanupErr},
		{name: "run error wins", runErr: runErr, cleanupErr: cleanupErr, want: runErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := false
			wrapped := withCleanup(
				func(*cobra.Command, []string) error { return tt.runErr },
				func() error { cleaned = true; return tt.cleanupErr },
			)

			err := wrapped(&cobra.Command{}, nil)
			assert.True(t, cleaned)
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestNewRootCmd_WrapsEveryRunE(t *testing.T) {
	root := NewRootCmd("test")
	var withRun []string
	for _, c := range walkCommands(root) {
		if c.RunE != nil {
			withRun = append(withRun, c.Name())
		}
	}
	assert.ElementsMatch(t, []string{"lookup", "serve", "init", "show"}, withRun)
}
