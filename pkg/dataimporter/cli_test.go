package dataimporter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := &cli.App{
		Name:      "hrdf",
		Commands:  RegisterCLI(),
		Writer:    &stdout,
		ErrWriter: &stderr,
	}

	err := app.Run(append([]string{"hrdf"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string][]string{
		"ECKDATEN": {"01.01.2025", "03.01.2025", "Test$01.12.2024 10:00:00$5.40.41$SBB"},
		"BITFELD":  {"000001 30"},
		"BAHNHOF":  {"0000100     Central$<1>", "0000200     North$<1>"},
		"FPLAN": {
			"*Z 001000 000011",
			"*A VE 0000100 0000200 000001",
			"*G IC  0000100 0000200",
			fmt.Sprintf("%07d %-21s%6s %6s", 100, "Central", "", "00800"),
			fmt.Sprintf("%07d %-21s%6s %6s", 200, "North", "00830", ""),
		},
	}

	for name, lines := range files {
		content := strings.Join(lines, "\n") + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	return dir
}

func TestVersionsCommand(t *testing.T) {
	stdout, _, err := run(t, "versions")
	require.NoError(t, err)

	assert.Contains(t, stdout, "2.0.4 (V_5_40_41_2_0_4) platforms=legacy")
	assert.Contains(t, stdout, "2.0.7 (V_5_40_41_2_0_7) platforms=extended stop-types=BHFART")
	assert.Contains(t, stdout, "FPLAN")
}

func TestRunsOnCommand(t *testing.T) {
	dir := writeDataset(t)

	stdout, _, err := run(t, "runs-on", "--path", dir, "--version", "2.0.6", "--journey", "1000", "--admin", "000011", "--date", "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, "1000/000011 2025-01-02: true\n", stdout)

	stdout, _, err = run(t, "runs-on", "--path", dir, "--version", "2.0.6", "--journey", "1000", "--admin", "000011", "--date", "2025-01-03")
	require.NoError(t, err)
	assert.Equal(t, "1000/000011 2025-01-03: false\n", stdout)
}

func TestDeparturesCommand(t *testing.T) {
	dir := writeDataset(t)

	stdout, _, err := run(t, "departures", "--path", dir, "--version", "2.0.6", "--stop", "100", "--from", "2025-01-01T00:00:00+01:00", "--window", "P2D")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2025-01-01 08:00  IC"), lines[0])
	assert.Contains(t, lines[0], "North")
	assert.True(t, strings.HasPrefix(lines[1], "2025-01-02 08:00"), lines[1])
}

func TestInspectCommandFilter(t *testing.T) {
	dir := writeDataset(t)

	stdout, _, err := run(t, "inspect", "--path", dir, "--version", "2.0.6", "--filter", `category == "IC"`)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"Number": 1000`)

	stdout, _, err = run(t, "inspect", "--path", dir, "--version", "2.0.6", "--filter", `category == "S"`)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Number")
}

func TestLoadCommandStrict(t *testing.T) {
	dir := writeDataset(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BAHNHOF"), []byte("0000100     Central$<1>\n"), 0o644))

	_, stderr, err := run(t, "load", "--path", dir, "--version", "2.0.6", "--strict")
	require.Error(t, err)
	assert.Contains(t, stderr, "FPLAN")
	assert.Contains(t, stderr, "UnresolvedReference")
}
