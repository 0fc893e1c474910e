package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jekabs-s/urlookup/internal/cli"
	"github.com/jekabs-s/urlookup/internal/config"
	"github.com/jekabs-s/urlookup/internal/spreadsheet"
)

// setupCLITest isolates config and logging and registers cleanup for global state.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

// stubRegistry serves datastore_search with one record for "Acme Ltd", a
// malformed date for "Bad Date SIA" and a 503 for "Gone SIA".
func stubRegistry(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var filters map[string]string
		_ = json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters)

		switch filters["name"] {
		case "Acme Ltd":
			fmt.Fprint(w, `{"success":true,"result":{"records":[
				{"name":"Acme Ltd","regcode":"4000123","registered":"2010-05-01T00:00:00","sepa":""}]}}`)
		case "Bad Date SIA":
			fmt.Fprint(w, `{"success":true,"result":{"records":[
				{"name":"Bad Date SIA","registered":"2010-99-99"}]}}`)
		case "Gone SIA":
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		default:
			fmt.Fprint(w, `{"success":true,"result":{"records":[]}}`)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv(config.EnvRegistryURL, srv.URL)
	return srv, &calls
}

func writeInput(t *testing.T, dir, header string, names ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", header))
	for i, n := range names {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, n))
	}
	path := filepath.Join(dir, "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestLookup_EndToEnd(t *testing.T) {
	setupCLITest(t)
	stubRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "entity_name", "Acme Ltd", "Zzz Nonexistent", "Gone SIA")
	output := filepath.Join(dir, "out.xlsx")

	out, err := execute(t, "lookup", "--input", input, "--output", output, "--workers", "2", "--backoff", "0s")
	require.NoError(t, err)

	assert.Contains(t, out, "LOOKUP SUMMARY")
	assert.Contains(t, out, "FAILED LOOKUPS")
	assert.Contains(t, out, "Gone SIA")
	assert.Contains(t, out, "Written to "+output)

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(spreadsheet.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"regcode", "name", "date_registered"}, rows[0])
	assert.Equal(t, "4000123", rows[1][0])
	assert.Equal(t, "Acme Ltd", rows[1][1])
}

func TestLookup_MissingColumnStopsBeforeQueries(t *testing.T) {
	setupCLITest(t)
	_, calls := stubRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "company", "Acme Ltd")
	output := filepath.Join(dir, "out.xlsx")

	_, err := execute(t, "lookup", "--input", input, "--output", output)
	require.Error(t, err)
	assert.ErrorIs(t, err, spreadsheet.ErrMissingColumn)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	assert.NoFileExists(t, output)
}

func TestLookup_MissingInputFile(t *testing.T) {
	setupCLITest(t)
	_, err := execute(t, "lookup", "--input", filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLookup_InputRequired(t *testing.T) {
	setupCLITest(t)
	_, err := execute(t, "lookup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"input" not set`)
}

func TestLookup_MalformedDateAbortsWithoutOutput(t *testing.T) {
	setupCLITest(t)
	stubRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "entity_name", "Acme Ltd", "Bad Date SIA")
	output := filepath.Join(dir, "out.xlsx")

	_, err := execute(t, "lookup", "--input", input, "--output", output, "--workers", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch data")
	assert.Contains(t, err.Error(), "2010-99-99")
	assert.NoFileExists(t, output)
}

func TestLookup_InvalidFlags(t *testing.T) {
	setupCLITest(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "entity_name", "Acme Ltd")

	_, err := execute(t, "lookup", "--input", input, "--workers", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidWorkers)
}

// openHandles counts this process's file descriptors pointing at path.
func openHandles(t *testing.T, path string) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("file descriptor listing not available")
	}
	n := 0
	for _, e := range entries {
		target, linkErr := os.Readlink(filepath.Join("/proc/self/fd", e.Name()))
		if linkErr == nil && target == path {
			n++
		}
	}
	return n
}

// A failed run must still close the log file, and per-package loggers must
// not repeat the component field.
func TestLookup_FailedRunReleasesLogFile(t *testing.T) {
	home := setupCLITest(t)
	stubRegistry(t)
	logFile := filepath.Join(home, "logs", "urlookup.log")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("logging:\n  level: info\n  format: json\n  file: "+logFile+"\n"), 0o600))
	t.Setenv(config.EnvLogLevel, "")

	dir := t.TempDir()
	input := writeInput(t, dir, "entity_name", "Bad Date SIA")

	_, err := execute(t, "lookup", "--input", input, "--output", filepath.Join(dir, "out.xlsx"))
	require.Error(t, err)

	assert.Equal(t, 0, openHandles(t, logFile))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
	}
}

func TestConfigInit(t *testing.T) {
	home := setupCLITest(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")
	assert.FileExists(t, filepath.Join(home, "config.yaml"))

	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_CreatesMissingHome(t *testing.T) {
	setupCLITest(t)
	home := filepath.Join(t.TempDir(), "nested", "home")
	t.Setenv(config.EnvHome, home)

	_, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.DirExists(t, home)
	assert.FileExists(t, filepath.Join(home, "config.yaml"))
}

func TestConfigShow(t *testing.T) {
	home := setupCLITest(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("lookup:\n  workers: 3\n  attempts: 2\n  backoff: 1s\n"), 0o600))

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from "+filepath.Join(home, "config.yaml"))
	assert.Contains(t, out, "workers: 3")
	assert.Contains(t, out, "base_url: https://data.gov.lv/dati/api/3/action/datastore_search")
}

func TestExplicitConfigFlag(t *testing.T) {
	setupCLITest(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("lookup:\n  workers: 5\n  attempts: 1\n"), 0o600))
	out, err := execute(t, "--config", good, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "workers: 5")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("lookup:\n  workers: 0\n"), 0o600))
	_, err = execute(t, "--config", bad, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")

	_, err = execute(t, "--config", filepath.Join(dir, "missing.yaml"), "config", "show")
	require.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	setupCLITest(t)
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "urlookup version test (commit unknown, built unknown)")
}
