package windows

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curator/cellstate"
	"curator/config"
	"curator/loader"
	"curator/metrics"
	"curator/validation"
)

func writeChests(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chests.csv")
	require.NoError(t, os.WriteFile(path, []byte("Player,Chest,Score\nAnn,Gold,30\nBob,Silvr,12\n"), 0o644))
	return path
}

func newMainWindow(t *testing.T) (*MainWindow, *metrics.Metrics) {
	t.Helper()
	cfg := config.Default()
	cfg.Rules = []config.RuleConfig{
		{Column: "Chest", Kind: config.KindChoice, Values: []string{"Gold", "Silver", "Bronze"}},
		{Column: "Score", Kind: config.KindNumeric},
	}
	rules, err := validation.FromConfig(cfg.Rules)
	require.NoError(t, err)
	m := metrics.New()

	mw, err := NewMainWindow(test.NewTempApp(t), Options{Config: cfg, Rules: rules, Metrics: m})
	require.NoError(t, err)
	t.Cleanup(mw.Close)
	return mw, m
}

func TestLoadFileValidatesRecords(t *testing.T) {
	mw, _ := newMainWindow(t)
	require.NoError(t, mw.LoadFile(writeChests(t)))

	assert.Equal(t, 2, mw.data.RowCount())
	st := mw.states.FullState(1, 1)
	assert.Equal(t, cellstate.StatusCorrectable, st.Status)
	require.NotEmpty(t, st.Suggestions)
	assert.Equal(t, "Silver", st.Suggestions[0].CorrectedValue)

	assert.Equal(t, "Loaded chests.csv: 2 rows, 1 cells flagged", mw.StatusText())
	assert.Equal(t, "2 of 2 rows | 0 invalid | 1 correctable | 0 warnings | 0 info", mw.CountsText())
	assert.Equal(t, "Curator - chests.csv", mw.Window().Title())
}

func TestLoadFileClearsPreviousStates(t *testing.T) {
	mw, _ := newMainWindow(t)
	mw.states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 5, Col: 0}: cellstate.Invalid("stale"),
	})
	require.NoError(t, mw.LoadFile(writeChests(t)))
	assert.False(t, mw.states.Has(5, 0))
	assert.Equal(t, 1, mw.states.Len())
}

func TestLoadFileReportsErrors(t *testing.T) {
	mw, _ := newMainWindow(t)
	err := mw.LoadFile(filepath.Join(t.TempDir(), "chests.xlsx"))
	assert.ErrorIs(t, err, loader.ErrUnsupportedFile)
	assert.Equal(t, "Error loading file", mw.StatusText())

	err = mw.LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSelectedCorrectionIsApplied(t *testing.T) {
	mw, m := newMainWindow(t)
	require.NoError(t, mw.LoadFile(writeChests(t)))

	coord := cellstate.Coordinate{Row: 1, Col: 1}
	mw.renderer.SelectCorrection(coord, mw.states.FullState(1, 1).Suggestions[0])

	v, err := mw.data.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Silver", v.Formatted)
	assert.False(t, mw.states.Has(1, 1))
	assert.Equal(t, `Changed "Silvr" to "Silver"`, mw.StatusText())
	assert.Contains(t, mw.CountsText(), "0 correctable")
	assert.Equal(t, 1.0, testCounter(m, metrics.OutcomeApplied))

	var buf bytes.Buffer
	require.NoError(t, mw.WriteJournal(&buf))
	assert.Contains(t, buf.String(), "corrected: Silver")
	assert.Contains(t, buf.String(), "column: Chest")
}

func TestCommittedEditIsValidatedBeforeWrite(t *testing.T) {
	mw, _ := newMainWindow(t)
	require.NoError(t, mw.LoadFile(writeChests(t)))

	scoreCell := cellstate.Coordinate{Row: 0, Col: 2}
	mw.renderer.CommitEdit(scoreCell, "lots")
	v, err := mw.data.Cell(0, 2)
	require.NoError(t, err)
	assert.Equal(t, "30", v.Formatted)
	assert.Equal(t, cellstate.StatusInvalid, mw.states.FullState(0, 2).Status)
	assert.Equal(t, "Value marked invalid", mw.StatusText())

	mw.renderer.CommitEdit(scoreCell, "31")
	v, err = mw.data.Cell(0, 2)
	require.NoError(t, err)
	assert.Equal(t, "31", v.Formatted)
	assert.False(t, mw.states.Has(0, 2))
	assert.Equal(t, "Value accepted", mw.StatusText())
}

func TestFilterUpdatesCounts(t *testing.T) {
	mw, _ := newMainWindow(t)
	require.NoError(t, mw.LoadFile(writeChests(t)))

	test.Type(mw.filter, "bob")
	assert.Equal(t, "bob", mw.proxy.FilterText())
	assert.Equal(t, 1, mw.proxy.RowCount())
	assert.Contains(t, mw.CountsText(), "1 of 2 rows")
}

func TestFilterColumnsFromConfig(t *testing.T) {
	mw, _ := newMainWindow(t)
	mw.cfg.Grid.FilterColumns = []string{"Chest", "Nope"}
	require.NoError(t, mw.LoadFile(writeChests(t)))

	mw.proxy.SetFilterText("ann")
	assert.Equal(t, 0, mw.proxy.RowCount())
	mw.proxy.SetFilterText("gold")
	assert.Equal(t, 1, mw.proxy.RowCount())
}

func TestExportFileRoundTrip(t *testing.T) {
	mw, _ := newMainWindow(t)
	require.NoError(t, mw.LoadFile(writeChests(t)))

	out := filepath.Join(t.TempDir(), "chests.parquet")
	require.NoError(t, mw.ExportFile(out))
	assert.Equal(t, "Exported to chests.parquet", mw.StatusText())

	back, err := loader.Load(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 2, back.RowCount())
	assert.Equal(t, mw.data.Columns(), back.Columns())
}

func TestValidateAllCountsFlagged(t *testing.T) {
	mw, _ := newMainWindow(t)
	require.NoError(t, mw.LoadFile(writeChests(t)))
	mw.states.Clear()

	assert.Equal(t, 1, mw.ValidateAll())
	assert.Equal(t, cellstate.StatusCorrectable, mw.states.FullState(1, 1).Status)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "records.csv", exportFileName("", ".csv"))
	assert.Equal(t, "chests_curated.json", exportFileName("/data/chests.csv", ".json"))
}

func testCounter(m *metrics.Metrics, outcome string) float64 {
	return testutil.ToFloat64(m.Corrections().WithLabelValues(outcome))
}
