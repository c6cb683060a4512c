package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curator/cellstate"
	"curator/config"
)

func in(column, value string) Input {
	return Input{Column: column, Value: value, Lookup: func(c string) (string, bool) {
		if c == column {
			return value, true
		}
		return "", false
	}}
}

func ptr(v float64) *float64 { return &v }

func TestRequiredRule(t *testing.T) {
	r := RequiredRule{Column: "Player", Severity: cellstate.StatusInvalid}
	assert.Equal(t, cellstate.StatusValid, r.Check(in("Player", "Ann")).Status)

	st := r.Check(in("Player", "  "))
	assert.Equal(t, cellstate.StatusInvalid, st.Status)
	assert.Equal(t, "Player is required", st.ErrorDetails)
}

func TestNumericRule(t *testing.T) {
	r := NumericRule{Column: "Score", Min: ptr(0), Max: ptr(100), Severity: cellstate.StatusInvalid}

	cases := map[string]string{
		"50":  "",
		"":    "",
		"abc": "Score must be numeric",
		"-1":  "Score must be at least 0",
		"101": "Score must be at most 100",
	}
	for value, msg := range cases {
		st := r.Check(in("Score", value))
		if msg == "" {
			assert.Equal(t, cellstate.StatusValid, st.Status, value)
			continue
		}
		assert.Equal(t, cellstate.StatusInvalid, st.Status, value)
		assert.Equal(t, msg, st.ErrorDetails, value)
	}

	warn := NumericRule{Column: "Score", Severity: cellstate.StatusWarning, Message: "odd score"}
	assert.Equal(t, cellstate.Warning("odd score"), warn.Check(in("Score", "x")))
}

func TestChoiceRuleSuggestions(t *testing.T) {
	r := ChoiceRule{Column: "Chest", Values: []string{"Gold", "Silver", "Bronze", "Sliver"}, MaxDistance: 3}

	assert.Equal(t, cellstate.StatusValid, r.Check(in("Chest", "Gold")).Status)
	assert.Equal(t, cellstate.StatusValid, r.Check(in("Chest", "gold")).Status, "case-insensitive match")
	assert.Equal(t, cellstate.StatusValid, r.Check(in("Chest", "")).Status)

	st := r.Check(in("Chest", "Silvr"))
	assert.Equal(t, cellstate.StatusCorrectable, st.Status)
	require.Len(t, st.Suggestions, 2)
	assert.Equal(t, cellstate.Suggestion{OriginalValue: "Silvr", CorrectedValue: "Silver"}, st.Suggestions[0])
	assert.Equal(t, "Sliver", st.Suggestions[1].CorrectedValue)

	st = r.Check(in("Chest", "Diamond"))
	assert.Equal(t, cellstate.StatusInvalid, st.Status)
	assert.Equal(t, "Chest must be one of: Gold, Silver, Bronze, Sliver", st.ErrorDetails)
}

func TestChoiceRuleCapsSuggestions(t *testing.T) {
	r := ChoiceRule{Column: "Code", Values: []string{"aa", "ab", "ac", "ad", "ae"}, MaxDistance: 1}
	st := r.Check(in("Code", "a"))
	assert.Equal(t, cellstate.StatusCorrectable, st.Status)
	assert.Len(t, st.Suggestions, MaxSuggestions)
}

func TestExpression(t *testing.T) {
	row := map[string]string{"score": "42", "chest": "Gold", "player": "John Smith"}
	lookup := func(c string) (string, bool) {
		v, ok := row[c]
		return v, ok
	}

	cases := []struct {
		src  string
		want bool
	}{
		{"score >= 0 AND score <= 100", true},
		{"score > 50 OR chest = gold", true},
		{"score > 50 or chest != gold", false},
		{"player ~ smith", true},
		{"player = 'John Smith'", true},
		{"player = 'John and Smith'", false},
		{"missing = 1", false},
		{"chest < Silver", true},
	}
	for _, tc := range cases {
		expr, err := ParseExpression(tc.src)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.want, expr.Eval(lookup), tc.src)
	}
}

func TestParseExpressionErrors(t *testing.T) {
	for _, src := range []string{"", "AND score = 1", "score = 1 AND", "score = 1 AND OR chest = x", "score"} {
		_, err := ParseExpression(src)
		assert.Error(t, err, src)
	}

	expr, err := ParseExpression("Score > 1 AND score < 5 OR Chest = x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Score", "Chest"}, expr.Columns())
	assert.Len(t, expr.Logic, 2)
}

func TestExprRuleBindsReferencedColumns(t *testing.T) {
	r, err := NewExprRule("", "Score >= 0 AND Score <= 100", cellstate.StatusInvalid, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Score"}, r.Columns())

	st := r.Check(in("Score", "150"))
	assert.Equal(t, cellstate.StatusInvalid, st.Status)
	assert.Equal(t, "failed check: Score >= 0 AND Score <= 100", st.ErrorDetails)
}

func TestScriptRule(t *testing.T) {
	src := `
import "strings"

func Check(value string) string {
	if strings.HasPrefix(value, "Player") {
		return "generic player name"
	}
	return ""
}
`
	r, err := NewScriptRule("Player", src, cellstate.StatusWarning)
	require.NoError(t, err)

	assert.Equal(t, cellstate.StatusValid, r.Check(in("Player", "Ann")).Status)
	assert.Equal(t, cellstate.Warning("generic player name"), r.Check(in("Player", "Player7")))
}

func TestScriptRuleRejectsBadScripts(t *testing.T) {
	_, err := NewScriptRule("A", "func Check(", cellstate.StatusInvalid)
	assert.Error(t, err)

	_, err = NewScriptRule("A", "func Check(v int) int { return v }", cellstate.StatusInvalid)
	assert.Error(t, err)
}

func TestRuleSetMostSevereWins(t *testing.T) {
	rs := NewRuleSet(
		NumericRule{Column: "Score", Severity: cellstate.StatusWarning},
		RequiredRule{Column: "score", Severity: cellstate.StatusInvalid},
	)
	assert.Equal(t, 2, rs.Len())
	assert.Len(t, rs.For("SCORE"), 2)

	assert.Equal(t, cellstate.StatusInvalid, rs.Check(in("Score", "")).Status)
	assert.Equal(t, cellstate.StatusWarning, rs.Check(in("Score", "abc")).Status)
	assert.Equal(t, cellstate.StatusValid, rs.Check(in("Score", "3")).Status)
	assert.Equal(t, cellstate.StatusValid, rs.Check(in("Other", "")).Status)
}

func TestFromConfig(t *testing.T) {
	rs, err := FromConfig([]config.RuleConfig{
		{Column: "Chest", Kind: config.KindChoice, Values: []string{"Gold"}},
		{Column: "Score", Kind: config.KindNumeric, Min: ptr(0), Severity: "info"},
		{Kind: config.KindExpr, Expr: "Score <= 100"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, cellstate.StatusInfo, rs.Check(in("Score", "-4")).Status)
	assert.Equal(t, cellstate.StatusInvalid, rs.Check(in("Score", "400")).Status)

	_, err = FromConfig([]config.RuleConfig{{Column: "A", Kind: "regex"}})
	assert.ErrorIs(t, err, ErrUnknownRule)
}
