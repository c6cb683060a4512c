package correction

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"curator/cellstate"
	"curator/datatable"
	"curator/metrics"
)

func newService(t *testing.T) (*Service, *datatable.Store, *cellstate.Store, *metrics.Metrics) {
	t.Helper()
	cols := []datatable.Column{{Name: "Chest", Type: datatable.TypeString}, {Name: "Score", Type: datatable.TypeInt}}
	tbl, err := datatable.NewTable(cols, [][]datatable.Value{
		{datatable.NewValue("Silvr", datatable.TypeString), datatable.NewValue(int64(3), datatable.TypeInt)},
	})
	require.NoError(t, err)
	data := datatable.NewStore(tbl)
	states := cellstate.NewStore()
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 0, Col: 0}: cellstate.Correctable("Silvr", "Silver"),
		{Row: 0, Col: 1}: cellstate.Correctable("3", "three"),
	})
	m := metrics.New()
	svc := New(data, states, m, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, data, states, m
}

func TestApplyWritesAndResets(t *testing.T) {
	svc, data, states, m := newService(t)
	coord := cellstate.Coordinate{Row: 0, Col: 0}

	require.NoError(t, svc.Apply(coord, states.FullState(0, 0).Suggestions[0]))

	v, _ := data.Cell(0, 0)
	assert.Equal(t, "Silver", v.Formatted)
	assert.False(t, states.Has(0, 0))

	journal := svc.Journal()
	require.Len(t, journal, 1)
	_, err := uuid.Parse(journal[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, "Chest", journal[0].Column)
	assert.Equal(t, "Silvr", journal[0].Original)
	assert.Equal(t, "Silver", journal[0].Corrected)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Corrections().WithLabelValues(metrics.OutcomeApplied)))
}

func TestApplyMalformedSuggestion(t *testing.T) {
	svc, data, states, m := newService(t)
	before := states.FullState(0, 0)

	err := svc.Apply(cellstate.Coordinate{Row: 0, Col: 0}, cellstate.Suggestion{OriginalValue: "Silvr"})
	assert.ErrorIs(t, err, datatable.ErrMalformedSuggestion)

	v, _ := data.Cell(0, 0)
	assert.Equal(t, "Silvr", v.Formatted)
	assert.Equal(t, before, states.FullState(0, 0))
	assert.Empty(t, svc.Journal())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Corrections().WithLabelValues(metrics.OutcomeMalformed)))
}

func TestApplyRejectedWrite(t *testing.T) {
	svc, data, states, _ := newService(t)
	before := states.FullState(0, 1)

	err := svc.Apply(cellstate.Coordinate{Row: 0, Col: 1}, before.Suggestions[0])
	assert.ErrorIs(t, err, datatable.ErrWriteRejected)

	v, _ := data.Cell(0, 1)
	assert.Equal(t, "3", v.Formatted)
	assert.Equal(t, before, states.FullState(0, 1))
	assert.Empty(t, svc.Journal())
}

func TestJournalIsCopy(t *testing.T) {
	svc, _, _, _ := newService(t)
	require.NoError(t, svc.Apply(cellstate.Coordinate{Row: 0, Col: 0}, cellstate.Suggestion{OriginalValue: "Silvr", CorrectedValue: "Gold"}))

	j := svc.Journal()
	j[0].Corrected = "tampered"
	assert.Equal(t, "Gold", svc.Journal()[0].Corrected)
}

func TestWriteJournal(t *testing.T) {
	svc, _, _, _ := newService(t)
	var empty bytes.Buffer
	require.NoError(t, svc.WriteJournal(&empty))
	assert.Equal(t, "[]\n", empty.String())

	require.NoError(t, svc.Apply(cellstate.Coordinate{Row: 0, Col: 0}, cellstate.Suggestion{OriginalValue: "Silvr", CorrectedValue: "Silver"}))
	var buf bytes.Buffer
	require.NoError(t, svc.WriteJournal(&buf))

	var decoded []Record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	want := svc.Journal()
	require.Len(t, decoded, 1)
	assert.Equal(t, want[0].ID, decoded[0].ID)
	assert.Equal(t, want[0].Corrected, decoded[0].Corrected)
	assert.True(t, want[0].Timestamp.Equal(decoded[0].Timestamp))
}
