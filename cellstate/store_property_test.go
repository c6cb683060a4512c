package cellstate

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func batchOf(rows, cols, statuses []int) map[Coordinate]State {
	batch := make(map[Coordinate]State)
	for i := 0; i < len(rows) && i < len(cols) && i < len(statuses); i++ {
		st := State{Status: Status(statuses[i])}
		switch st.Status {
		case StatusInvalid, StatusWarning:
			st.ErrorDetails = "problem"
		case StatusCorrectable:
			st.Suggestions = []Suggestion{{OriginalValue: "o", CorrectedValue: "c"}}
		}
		batch[Coordinate{Row: rows[i], Col: cols[i]}] = st
	}
	return batch
}

// TestStoreProperties checks batch atomicity, status exclusivity and
// default-state equivalence over random batches.
func TestStoreProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	coords := gen.SliceOf(gen.IntRange(0, 40))
	statuses := gen.SliceOf(gen.IntRange(int(StatusNormal), int(StatusInfo)))

	properties.Property("one notification per non-empty batch, covering every key", prop.ForAll(
		func(rows, cols, sts []int) bool {
			batch := batchOf(rows, cols, sts)
			s := NewStore()
			var got []Change
			s.Subscribe(func(c Change) { got = append(got, c) })

			s.UpdateStates(batch)
			if len(batch) == 0 {
				return len(got) == 0
			}
			if len(got) != 1 || len(got[0].Coordinates) != len(batch) {
				return false
			}
			for _, c := range got[0].Coordinates {
				if _, ok := batch[c]; !ok {
					return false
				}
			}
			return true
		},
		coords, coords, statuses,
	))

	properties.Property("every stored status is exactly the one written", prop.ForAll(
		func(rows, cols, sts []int) bool {
			batch := batchOf(rows, cols, sts)
			s := NewStore()
			s.UpdateStates(batch)
			for c, want := range batch {
				got := s.FullState(c.Row, c.Col).Status
				if got != want.Status || got < StatusNormal || got > StatusInfo {
					return false
				}
			}
			return true
		},
		coords, coords, statuses,
	))

	properties.Property("reset cells equal never-touched cells", prop.ForAll(
		func(rows, cols, sts []int) bool {
			batch := batchOf(rows, cols, sts)
			s := NewStore()
			s.UpdateStates(batch)
			for c := range batch {
				s.ResetCellState(c.Row, c.Col)
			}
			for c := range batch {
				st := s.FullState(c.Row, c.Col)
				if !st.IsDefault() || s.Has(c.Row, c.Col) {
					return false
				}
			}
			return s.Len() == 0
		},
		coords, coords, statuses,
	))

	properties.TestingRun(t)
}
