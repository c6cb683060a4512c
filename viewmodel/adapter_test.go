package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curator/cellstate"
	"curator/datatable"
)

func newChestStore(t *testing.T) *datatable.Store {
	t.Helper()
	tbl, err := datatable.NewStringTable(
		[]string{"Player", "Chest", "Score", "Source", "Date", "Clan"},
		[][]string{
			{"Player1", "Gold", "30", "Event", "2024-01-01", "A"},
			{"Player2", "Silvr", "abc", "Event", "2024-01-02", "B"},
			{"JohnSmiht", "Bronze", "10", "Arena", "2024-01-03", "A"},
		},
	)
	require.NoError(t, err)
	return datatable.NewStore(tbl)
}

func newAdapter(t *testing.T) (*Adapter, *datatable.Store, *cellstate.Store) {
	t.Helper()
	data := newChestStore(t)
	states := cellstate.NewStore()
	a, err := New(data, states)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, data, states
}

// fakeData records sort calls without owning any rows.
type fakeData struct {
	names     []string
	sortCalls []sortCall
	subs      int
}

type sortCall struct {
	name      string
	ascending bool
}

func (f *fakeData) RowCount() int {
	return 2
}

func (f *fakeData) ColumnCount() int {
	return len(f.names)
}

func (f *fakeData) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(f.names) {
		return "", datatable.ErrInvalidColumn
	}
	return f.names[col], nil
}

func (f *fakeData) ColumnIndex(string) (int, error) {
	return -1, datatable.ErrColumnNotFound
}

func (f *fakeData) ColumnType(int) (datatable.DataType, error) {
	return datatable.TypeString, nil
}

func (f *fakeData) Cell(int, int) (datatable.Value, error) {
	return datatable.NewValue("v", datatable.TypeString), nil
}

func (f *fakeData) Row(int) ([]datatable.Value, error) {
	return nil, nil
}

func (f *fakeData) SortByColumn(name string, ascending bool) ([]int, error) {
	f.sortCalls = append(f.sortCalls, sortCall{name, ascending})
	return []int{1, 0}, nil
}

func (f *fakeData) Subscribe(func(datatable.Change)) func() {
	f.subs++
	return func() { f.subs-- }
}

// fakeStates is a read-only state store with no row permutation support.
type fakeStates struct{}

func (fakeStates) FullState(int, int) cellstate.State {
	return cellstate.Default
}

func (fakeStates) Subscribe(func(cellstate.Change)) func() {
	return func() {}
}

func TestNewRejectsMissingStores(t *testing.T) {
	_, err := New(nil, cellstate.NewStore())
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)

	_, err = New(&fakeData{}, nil)
	assert.ErrorIs(t, err, datatable.ErrNoStateStore)
}

func TestRolesOutOfBoundsAreNeutral(t *testing.T) {
	a, _, _ := newAdapter(t)

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 6}} {
		row, col := c[0], c[1]
		assert.Equal(t, "", a.DisplayValue(row, col))
		assert.Equal(t, cellstate.StatusNormal, a.ValidationStatus(row, col))
		assert.Empty(t, a.Suggestions(row, col))
		assert.Equal(t, "", a.ErrorText(row, col))
		_, ok := a.Background(row, col)
		assert.False(t, ok)
		_, ok = a.ToolTip(row, col)
		assert.False(t, ok)
		assert.Nil(t, a.Data(row, col, RoleBackground))
	}
}

func TestInvalidCellTooltip(t *testing.T) {
	a, _, states := newAdapter(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 1, Col: 2}: cellstate.Invalid("Score must be numeric"),
	})

	tip, ok := a.ToolTip(1, 2)
	require.True(t, ok)
	assert.Equal(t, "Score must be numeric", tip)
	assert.Equal(t, "Score must be numeric", a.Data(1, 2, RoleToolTip))

	tip, ok = a.ToolTip(0, 0)
	assert.False(t, ok)
	assert.Empty(t, tip)

	bg, ok := a.Background(1, 2)
	require.True(t, ok)
	assert.Equal(t, DefaultPalette().Invalid, bg)
}

func TestCorrectableRoles(t *testing.T) {
	a, _, states := newAdapter(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 1, Col: 1}: cellstate.Correctable("Silvr", "Silver", "Sliver"),
	})

	tip, ok := a.ToolTip(1, 1)
	require.True(t, ok)
	assert.Equal(t, "Suggestions:\n- Silver\n- Sliver", tip)
	assert.True(t, a.HasCorrection(1, 1))
	assert.Equal(t, true, a.Data(1, 1, RoleCorrectionState))
	assert.Len(t, a.Suggestions(1, 1), 2)

	bg, ok := a.Background(1, 1)
	require.True(t, ok)
	assert.Equal(t, DefaultPalette().Correctable, bg)
}

func TestWarningHasNoBackgroundOverride(t *testing.T) {
	a, _, states := newAdapter(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 0, Col: 0}: cellstate.Warning("odd name"),
	})

	_, ok := a.Background(0, 0)
	assert.False(t, ok)
	_, ok = a.ToolTip(0, 0)
	assert.False(t, ok)
	assert.Equal(t, "odd name", a.ErrorText(0, 0))
}

func TestErrorTextOnlyForErrorStatuses(t *testing.T) {
	a, _, states := newAdapter(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 0, Col: 0}: {Status: cellstate.StatusInfo, ErrorDetails: "looked up"},
		{Row: 1, Col: 0}: {Status: cellstate.StatusCorrectable, ErrorDetails: "typo",
			Suggestions: []cellstate.Suggestion{{OriginalValue: "x", CorrectedValue: "y"}}},
		{Row: 2, Col: 0}: cellstate.Invalid("required"),
	})

	assert.Equal(t, "", a.ErrorText(0, 0))
	assert.Equal(t, "", a.ErrorText(1, 0))
	assert.Equal(t, "required", a.ErrorText(2, 0))
}

func TestSuggestionsAreCopies(t *testing.T) {
	a, _, states := newAdapter(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 0, Col: 0}: cellstate.Correctable("JohnSmiht", "John Smith"),
	})

	got := a.Suggestions(0, 0)
	require.NotEmpty(t, got)
	got[0].CorrectedValue = "Jane"

	assert.Equal(t, "John Smith", states.FullState(0, 0).Suggestions[0].CorrectedValue)
}

func TestResetRoundTripThroughRoles(t *testing.T) {
	a, _, states := newAdapter(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 2, Col: 0}: cellstate.Correctable("JohnSmiht", "A", "B"),
	})
	states.ResetCellState(2, 0)

	assert.Equal(t, cellstate.StatusNormal, a.ValidationStatus(2, 0))
	assert.Equal(t, "", a.ErrorText(2, 0))
	assert.Empty(t, a.Suggestions(2, 0))
	for _, role := range StateRoles {
		assert.Equal(t, a.Data(0, 5, role), a.Data(2, 0, role), role.String())
	}
}

func TestStateChangeEmitsBoundingRect(t *testing.T) {
	a, _, states := newAdapter(t)
	var got []CellsChanged
	a.OnCellsChanged(func(c CellsChanged) { got = append(got, c) })

	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 1, Col: 3}: cellstate.Invalid("x"),
		{Row: 2, Col: 3}: cellstate.Invalid("y"),
		{Row: 1, Col: 5}: cellstate.Invalid("z"),
	})

	require.Len(t, got, 1)
	assert.Equal(t, Rect{TopRow: 1, BottomRow: 2, LeftCol: 3, RightCol: 5}, got[0].Rect)
	assert.ElementsMatch(t, StateRoles, got[0].Roles)
	assert.True(t, got[0].Rect.Contains(2, 5), "false positive is allowed")
}

func TestDataChangeEmitsSingleCell(t *testing.T) {
	a, data, _ := newAdapter(t)
	var got []CellsChanged
	a.OnCellsChanged(func(c CellsChanged) { got = append(got, c) })

	require.True(t, data.SetCellValue(0, 2, "31"))
	require.Len(t, got, 1)
	assert.Equal(t, CellRect(0, 2), got[0].Rect)
	assert.True(t, got[0].HasRole(RoleDisplay))
	assert.Equal(t, "31", a.DisplayValue(0, 2))
}

func TestDataResetReloadsHeaders(t *testing.T) {
	a, data, _ := newAdapter(t)
	resets := 0
	a.OnModelReset(func() { resets++ })

	tbl, err := datatable.NewStringTable([]string{"Only"}, [][]string{{"x"}})
	require.NoError(t, err)
	data.UpdateData(tbl)

	assert.Equal(t, 1, resets)
	assert.Equal(t, "Only", a.HeaderData(0))
	assert.Equal(t, "", a.HeaderData(1))
	assert.Equal(t, 1, a.ColumnCount())
}

func TestSetDataForwardsWithoutWriting(t *testing.T) {
	var reqs []ValidationRequest
	data := newChestStore(t)
	writes := 0
	data.Subscribe(func(datatable.Change) { writes++ })

	a, err := New(data, cellstate.NewStore(), WithValidationHandler(func(r ValidationRequest) {
		reqs = append(reqs, r)
	}))
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.SetData(1, 2, "55"))
	assert.False(t, a.SetData(9, 9, "nope"))

	require.Len(t, reqs, 1)
	assert.Equal(t, ValidationRequest{Coord: cellstate.Coordinate{Row: 1, Col: 2}, Value: "55"}, reqs[0])
	assert.Zero(t, writes)
	assert.Equal(t, "abc", a.DisplayValue(1, 2))
}

func TestSortDelegation(t *testing.T) {
	data := &fakeData{names: []string{"Player", "Chest", "Score"}}
	a, err := New(data, fakeStates{})
	require.NoError(t, err)

	var events []string
	a.OnLayoutAboutToChange(func() { events = append(events, "about") })
	a.OnLayoutChanged(func() { events = append(events, "changed") })

	a.Sort(2, false)

	assert.Equal(t, []sortCall{{name: "Score", ascending: false}}, data.sortCalls)
	assert.Equal(t, []string{"about", "changed"}, events)
	assert.Equal(t, datatable.SortState{Column: 2, Direction: datatable.SortDescending}, a.SortState())

	a.Close()
	assert.Zero(t, data.subs)
}

func TestSortUnresolvableColumnIsNoOp(t *testing.T) {
	data := &fakeData{names: []string{"Player"}}
	a, err := New(data, fakeStates{})
	require.NoError(t, err)
	defer a.Close()

	events := 0
	a.OnLayoutAboutToChange(func() { events++ })
	a.OnLayoutChanged(func() { events++ })

	a.Sort(7, true)
	a.Sort(-1, true)

	assert.Empty(t, data.sortCalls)
	assert.Zero(t, events)
	assert.False(t, a.SortState().IsSorted())
}

func TestSortCarriesStatesWithRows(t *testing.T) {
	a, _, states := newAdapter(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 2, Col: 0}: cellstate.Warning("check spelling"),
	})

	a.Sort(0, true) // JohnSmiht moves to the top

	assert.Equal(t, "JohnSmiht", a.DisplayValue(0, 0))
	assert.Equal(t, "check spelling", a.ErrorText(0, 0))
	assert.Equal(t, cellstate.StatusNormal, a.ValidationStatus(2, 0))
}

func TestBoundingRectEmpty(t *testing.T) {
	_, ok := BoundingRect(nil)
	assert.False(t, ok)
}
