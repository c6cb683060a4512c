package delegate

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curator/cellstate"
	"curator/datatable"
	"curator/viewmodel"
)

type op struct {
	kind string
	icon Icon
	rect Rect
}

// recorder is a Painter that remembers every call.
type recorder struct {
	ops []op
}

func (r *recorder) FillRect(rect Rect, c color.Color) {
	r.ops = append(r.ops, op{kind: "fill", rect: rect})
}

func (r *recorder) DrawText(rect Rect, text string) {
	r.ops = append(r.ops, op{kind: "text", rect: rect})
}

func (r *recorder) DrawIcon(rect Rect, icon Icon) {
	r.ops = append(r.ops, op{kind: "icon", icon: icon, rect: rect})
}

func (r *recorder) kinds() []string {
	out := make([]string, len(r.ops))
	for i, o := range r.ops {
		out[i] = o.kind
	}
	return out
}

func (r *recorder) icons(icon Icon) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == "icon" && o.icon == icon {
			n++
		}
	}
	return n
}

type menuRecorder struct {
	menus []SuggestionMenu
	at    fyne.Position
}

func (m *menuRecorder) ShowMenu(menu SuggestionMenu, at fyne.Position) {
	m.menus = append(m.menus, menu)
	m.at = at
}

type tipRecorder struct {
	texts []string
}

func (t *tipRecorder) ShowToolTip(text string, at fyne.Position) {
	t.texts = append(t.texts, text)
}

type fixedPrompter struct {
	answer string
}

func (p fixedPrompter) Prompt(title, initial string, submit func(string)) { submit(p.answer) }

func fixedMeasure(text string) fyne.Size {
	return fyne.NewSize(float32(len(text))*10, 12)
}

func setup(t *testing.T) (*viewmodel.Adapter, *cellstate.Store) {
	t.Helper()
	tbl, err := datatable.NewStringTable(
		[]string{"Player", "Chest", "Score"},
		[][]string{{"Player1", "Silvr", "30"}, {"Player2", "Gold", "x"}},
	)
	require.NoError(t, err)
	states := cellstate.NewStore()
	a, err := viewmodel.New(datatable.NewStore(tbl), states)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, states
}

func newRenderer(a *viewmodel.Adapter, v Variant, opts ...Option) *Renderer {
	o := DefaultOptions()
	o.Measure = fixedMeasure
	return New(v, a, append([]Option{WithOptions(o)}, opts...)...)
}

var cellBounds = NewRect(0, 0, 120, 30)

func TestCorrectableIndicatorPaint(t *testing.T) {
	a, states := setup(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 0, Col: 1}: cellstate.Correctable("Silvr", "Silver"),
	})
	r := newRenderer(a, VariantCorrection)

	p := &recorder{}
	r.Paint(p, cellBounds, cellstate.Coordinate{Row: 0, Col: 1})

	assert.Equal(t, 1, p.icons(IconCorrection))
	assert.Zero(t, p.icons(IconInvalid)+p.icons(IconWarning)+p.icons(IconInfo))
	assert.Equal(t, []string{"fill", "text", "icon"}, p.kinds())
	assert.Equal(t, r.IndicatorRect(cellBounds), p.ops[2].rect)
}

func TestPaintPrecedence(t *testing.T) {
	a, states := setup(t)
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		{Row: 1, Col: 2}: cellstate.Invalid("Score must be numeric"),
	})
	coord := cellstate.Coordinate{Row: 1, Col: 2}

	cases := []struct {
		variant Variant
		kinds   []string
	}{
		{VariantBase, []string{"text"}},
		{VariantValidation, []string{"fill", "text", "icon"}},
		{VariantCorrection, []string{"fill", "text", "icon"}},
	}
	for _, tc := range cases {
		t.Run(tc.variant.String(), func(t *testing.T) {
			p := &recorder{}
			newRenderer(a, tc.variant).Paint(p, cellBounds, coord)
			assert.Equal(t, tc.kinds, p.kinds())
			if tc.variant != VariantBase {
				assert.Equal(t, 1, p.icons(IconInvalid))
				assert.Zero(t, p.icons(IconCorrection))
			}
		})
	}
}

func TestPaintByStatus(t *testing.T) {
	a, states := setup(t)
	r := newRenderer(a, VariantCorrection)
	coord := cellstate.Coordinate{Row: 0, Col: 0}

	cases := []struct {
		state cellstate.State
		fill  bool
		icon  Icon
	}{
		{cellstate.State{}, false, IconNone},
		{cellstate.State{Status: cellstate.StatusValid}, false, IconNone},
		{cellstate.Warning("w"), true, IconWarning},
		{cellstate.State{Status: cellstate.StatusInfo}, true, IconInfo},
		{cellstate.Invalid("i"), true, IconInvalid},
		{cellstate.Correctable("a", "b"), true, IconCorrection},
	}
	for _, tc := range cases {
		states.UpdateStates(map[cellstate.Coordinate]cellstate.State{coord: tc.state})
		p := &recorder{}
		r.Paint(p, cellBounds, coord)

		fills := 0
		var icons []Icon
		for _, o := range p.ops {
			switch o.kind {
			case "fill":
				fills++
			case "icon":
				icons = append(icons, o.icon)
			}
		}
		assert.Equal(t, tc.fill, fills == 1, tc.state.Status.String())
		if tc.icon == IconNone {
			assert.Empty(t, icons, tc.state.Status.String())
		} else {
			assert.Equal(t, []Icon{tc.icon}, icons, tc.state.Status.String())
		}
	}
}

func TestSizeHint(t *testing.T) {
	a, states := setup(t)
	coord := cellstate.Coordinate{Row: 0, Col: 0} // "Player1" measures 70 wide
	o := DefaultOptions()
	plain := 70 + 2*o.Margin
	grown := plain + o.IconSize + o.Margin

	base := newRenderer(a, VariantBase)
	validation := newRenderer(a, VariantValidation)
	correction := newRenderer(a, VariantCorrection)

	assert.Equal(t, plain, correction.SizeHint(coord).Width)

	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{coord: cellstate.Invalid("x")})
	assert.Equal(t, plain, base.SizeHint(coord).Width)
	assert.Equal(t, grown, validation.SizeHint(coord).Width)
	assert.Equal(t, grown, correction.SizeHint(coord).Width)

	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{coord: cellstate.Correctable("Player1", "Player 1")})
	assert.Equal(t, plain, validation.SizeHint(coord).Width, "no generic icon for correctable")
	assert.Equal(t, grown, correction.SizeHint(coord).Width)
	assert.Equal(t, o.IconSize+2*o.Margin, correction.SizeHint(coord).Height)
}

func TestEditorEventOpensMenuOnIndicator(t *testing.T) {
	a, states := setup(t)
	coord := cellstate.Coordinate{Row: 0, Col: 1}
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		coord: cellstate.Correctable("Silvr", "Silver", "Sliver"),
	})
	menus := &menuRecorder{}
	r := newRenderer(a, VariantCorrection, WithMenuPresenter(menus))

	box := r.IndicatorRect(cellBounds)
	inside := PressEvent{Pos: fyne.NewPos(box.Pos.X+1, box.Pos.Y+1), AbsolutePos: fyne.NewPos(300, 200)}
	outside := PressEvent{Pos: fyne.NewPos(2, 2)}

	assert.True(t, r.EditorEvent(inside, cellBounds, coord))
	require.Len(t, menus.menus, 1)
	assert.Equal(t, fyne.NewPos(300, 200), menus.at)

	assert.False(t, r.EditorEvent(outside, cellBounds, coord))
	assert.Len(t, menus.menus, 1)

	assert.False(t, newRenderer(a, VariantValidation, WithMenuPresenter(menus)).EditorEvent(inside, cellBounds, coord))
}

func TestEditorEventIgnoresIndicatorAreaWhenNotCorrectable(t *testing.T) {
	a, _ := setup(t)
	menus := &menuRecorder{}
	r := newRenderer(a, VariantCorrection, WithMenuPresenter(menus))
	box := r.IndicatorRect(cellBounds)

	consumed := r.EditorEvent(PressEvent{Pos: box.Pos}, cellBounds, cellstate.Coordinate{Row: 0, Col: 0})
	assert.False(t, consumed)
	assert.Empty(t, menus.menus)
}

func TestSuggestionMenu(t *testing.T) {
	a, states := setup(t)
	coord := cellstate.Coordinate{Row: 0, Col: 1}
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		coord: cellstate.Correctable("Silvr", "Silver", "Sliver"),
	})
	r := newRenderer(a, VariantCorrection, WithPrompter(fixedPrompter{answer: "Platinum"}))

	var picked []CorrectionSelected
	r.OnCorrectionSelected(func(c CorrectionSelected) { picked = append(picked, c) })

	menu := r.SuggestionMenu(r.Cell(coord))
	labels := make([]string, 0, len(menu.Entries))
	for _, e := range menu.Entries {
		if !e.Separator {
			labels = append(labels, e.Label)
		}
	}
	assert.Equal(t, []string{"Original: Silvr", "Change to: Silver", "Change to: Sliver", CustomCorrectionLabel}, labels)
	assert.True(t, menu.Entries[0].Disabled)

	menu.Entries[3].Action()
	menu.Entries[len(menu.Entries)-1].Action()

	require.Len(t, picked, 2)
	assert.Equal(t, CorrectionSelected{Coord: coord, Suggestion: cellstate.Suggestion{OriginalValue: "Silvr", CorrectedValue: "Sliver"}}, picked[0])
	assert.Equal(t, "Platinum", picked[1].Suggestion.CorrectedValue)
	assert.Equal(t, "Silvr", picked[1].Suggestion.OriginalValue)
}

func TestCustomCorrectionIgnoresBlank(t *testing.T) {
	a, _ := setup(t)
	r := newRenderer(a, VariantCorrection, WithPrompter(fixedPrompter{answer: "  "}))
	calls := 0
	r.OnCorrectionSelected(func(CorrectionSelected) { calls++ })

	menu := r.SuggestionMenu(r.Cell(cellstate.Coordinate{Row: 0, Col: 0}))
	menu.Entries[len(menu.Entries)-1].Action()
	assert.Zero(t, calls)
}

func TestHelpEvent(t *testing.T) {
	a, states := setup(t)
	invalid := cellstate.Coordinate{Row: 1, Col: 2}
	fixable := cellstate.Coordinate{Row: 0, Col: 1}
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{
		invalid: cellstate.Invalid("Score must be numeric"),
		fixable: cellstate.Correctable("Silvr", "Silver"),
	})
	tips := &tipRecorder{}
	r := newRenderer(a, VariantCorrection, WithToolTipPresenter(tips))
	box := r.IndicatorRect(cellBounds)
	onIndicator := PressEvent{Pos: fyne.NewPos(box.Pos.X+2, box.Pos.Y+2)}
	elsewhere := PressEvent{Pos: fyne.NewPos(3, 3)}

	assert.True(t, r.HelpEvent(elsewhere, cellBounds, invalid))
	assert.True(t, r.HelpEvent(onIndicator, cellBounds, fixable))
	assert.True(t, r.HelpEvent(elsewhere, cellBounds, fixable), "falls back to the tooltip role")
	assert.False(t, r.HelpEvent(elsewhere, cellBounds, cellstate.Coordinate{Row: 0, Col: 0}))

	assert.Equal(t, []string{
		"Score must be numeric",
		"Suggestions:\n- Silver",
		"Suggestions:\n- Silver",
	}, tips.texts)
}

func TestHelpEventWarningShowsErrorText(t *testing.T) {
	a, states := setup(t)
	coord := cellstate.Coordinate{Row: 0, Col: 0}
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{coord: cellstate.Warning("unusual name")})
	tips := &tipRecorder{}

	assert.True(t, newRenderer(a, VariantValidation, WithToolTipPresenter(tips)).HelpEvent(PressEvent{}, cellBounds, coord))
	assert.False(t, newRenderer(a, VariantBase, WithToolTipPresenter(tips)).HelpEvent(PressEvent{}, cellBounds, coord))
	assert.Equal(t, []string{"unusual name"}, tips.texts)
}

func TestCommitEditDoesNotWrite(t *testing.T) {
	a, _ := setup(t)
	r := newRenderer(a, VariantBase)
	var reqs []viewmodel.ValidationRequest
	r.OnValidationRequested(func(req viewmodel.ValidationRequest) { reqs = append(reqs, req) })

	r.CommitEdit(cellstate.Coordinate{Row: 1, Col: 2}, "40")

	require.Len(t, reqs, 1)
	assert.Equal(t, "40", reqs[0].Value)
	assert.Equal(t, "x", a.DisplayValue(1, 2))
}

func TestCreateEditorSubmitsForValidation(t *testing.T) {
	test.NewTempApp(t)
	a, _ := setup(t)
	r := newRenderer(a, VariantBase)
	var reqs []viewmodel.ValidationRequest
	r.OnValidationRequested(func(req viewmodel.ValidationRequest) { reqs = append(reqs, req) })

	entry := r.CreateEditor(cellstate.Coordinate{Row: 0, Col: 2})
	assert.Equal(t, "30", entry.Text)

	entry.SetText("35")
	entry.OnSubmitted(entry.Text)

	require.Len(t, reqs, 1)
	assert.Equal(t, "35", reqs[0].Value)
	assert.Equal(t, "30", a.DisplayValue(0, 2))
}

func TestFynePainter(t *testing.T) {
	test.NewTempApp(t)
	a, states := setup(t)
	coord := cellstate.Coordinate{Row: 1, Col: 2}
	states.UpdateStates(map[cellstate.Coordinate]cellstate.State{coord: cellstate.Invalid("bad")})

	p := NewFynePainter()
	newRenderer(a, VariantCorrection).Paint(p, cellBounds, coord)

	objs := p.Objects()
	require.Len(t, objs, 3)
	assert.IsType(t, &canvas.Rectangle{}, objs[0])
	assert.IsType(t, &canvas.Text{}, objs[1])
	assert.IsType(t, &canvas.Image{}, objs[2])
	assert.Equal(t, cellBounds.Size, objs[0].Size())

	p.Reset()
	assert.Empty(t, p.Objects())
	assert.Nil(t, IconResource(IconNone))
}
