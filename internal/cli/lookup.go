package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jekabs-s/urlookup/internal/config"
	"github.com/jekabs-s/urlookup/internal/engine"
	"github.com/jekabs-s/urlookup/internal/engine/batch"
	"github.com/jekabs-s/urlookup/internal/spreadsheet"
	"github.com/jekabs-s/urlookup/internal/tui"
)

// NewLookupCmd creates the standalone lookup command: read entity names from an
// xlsx file, query the registry and write the matched records to an xlsx file.
func NewLookupCmd() *cobra.Command {
	var (
		input  string
		output string
		flags  lookupFlags
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up the entity names of a workbook and write the matches",
		Long: `Reads the entity_name column of the first sheet of --input, looks up each
name in the register and writes every matched record to --output.

Names whose lookups exhaust their retries or are rejected by the registry are
listed after the summary. A malformed date in a registry record aborts the run
and no output is written.`,
		Example: `  urlookup lookup --input input.xlsx
  urlookup lookup --input input.xlsx --output out.xlsx --workers 4 --attempts 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("output") {
				output = config.GetOutputFilename()
			}
			return runLookup(cmd, input, output, &flags)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input xlsx file with an entity_name column (required)")
	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultOutputFile, "output xlsx file")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runLookup(cmd *cobra.Command, input, output string, flags *lookupFlags) error {
	cfg, err := effectiveConfig(cmd, flags)
	if err != nil {
		return err
	}

	names, err := readNames(input)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, nil)
	if err != nil {
		return err
	}
	if isTerminal(os.Stderr) {
		errOut := cmd.ErrOrStderr()
		eng.WithProgressCallback(func(p batch.ProgressSnapshot) {
			_, _ = fmt.Fprintln(errOut, tui.RenderProgress(p))
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rs, err := eng.Run(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to fetch data for entity names: %w", err)
	}

	if err = writeOutput(output, rs.Records); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, tui.RenderSummary(rs.Summary, rs.Duration, output))
	if failures := tui.RenderFailures(rs.Failures(), tui.DefaultFailureLimit); failures != "" {
		_, _ = fmt.Fprintln(out, failures)
	}
	return nil
}

func readNames(input string) ([]string, error) {
	f, err := os.Open(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input file %s does not exist", input)
		}
		return nil, fmt.Errorf("opening input %s: %w", input, err)
	}
	defer f.Close()

	names, err := spreadsheet.ReadEntityNames(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	return names, nil
}

// writeOutput writes the workbook to a temporary sibling file, then renames it
// onto path.
func writeOutput(path string, records []engine.Record) error {
	var buf bytes.Buffer
	if err := spreadsheet.WriteRecords(&buf, records); err != nil {
		return fmt.Errorf("building output workbook: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".urlookup-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to save data to %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to save data to %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to save data to %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to save data to %s: %w", path, err)
	}
	return nil
}
