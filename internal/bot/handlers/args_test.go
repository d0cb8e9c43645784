package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/session-bot/internal/apperr"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in, cmd, args string
	}{
		{"/start", "/start", ""},
		{"/Ranking@SessionBot 3", "/ranking", "3"},
		{"  /semester_add S1;01/09/2025;31/01/2026  ", "/semester_add", "S1;01/09/2025;31/01/2026"},
		{"/config NOTE_MAX 20 barème sur 20", "/config", "NOTE_MAX 20 barème sur 20"},
	}
	for _, c := range cases {
		cmd, args := SplitCommand(c.in)
		assert.Equal(t, c.cmd, cmd, c.in)
		assert.Equal(t, c.args, args, c.in)
	}
}

func TestFields(t *testing.T) {
	assert.Nil(t, fields("   "))
	assert.Equal(t, []string{"Doe", "John", "B3", ""}, fields(" Doe ; John;B3; "))
}

func TestParseHelpers(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, bad)
	}

	p, err := parsePoints("15")
	require.NoError(t, err)
	assert.Equal(t, 15, p)
	_, err = parsePoints("dix")
	assert.ErrorIs(t, err, apperr.ErrInvalidPointValue)

	v, err := parseNoteMax("")
	require.NoError(t, err)
	assert.Zero(t, v)
	v, err = parseNoteMax("4,5")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, v, 1e-9)
	_, err = parseNoteMax("-1")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCallbackID(t *testing.T) {
	id, ok := callbackID("ok:15", "ok:")
	assert.True(t, ok)
	assert.Equal(t, int64(15), id)

	_, ok = callbackID("no:15", "ok:")
	assert.False(t, ok)
	_, ok = callbackID("ok:x", "ok:")
	assert.False(t, ok)
}

func TestSemesterInput(t *testing.T) {
	in, err := semesterInput([]string{"S1", "01/09/2025", "31/01/2026", "20"})
	require.NoError(t, err)
	assert.Equal(t, "S1", in.Name)
	assert.Equal(t, "01/09/2025", in.StartDate)
	assert.InDelta(t, 20.0, in.NoteMax, 1e-9)

	in, err = semesterInput([]string{"S1", "01/09/2025", "31/01/2026"})
	require.NoError(t, err)
	assert.Zero(t, in.NoteMax)

	_, err = semesterInput([]string{"S1", "01/09/2025"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestTypeInput(t *testing.T) {
	name, pts, desc, err := typeInput([]string{"Tournoi", "30", "Compétition officielle"})
	require.NoError(t, err)
	assert.Equal(t, "Tournoi", name)
	assert.Equal(t, 30, pts)
	assert.Equal(t, "Compétition officielle", desc)

	_, _, _, err = typeInput([]string{"Tournoi", "beaucoup"})
	assert.ErrorIs(t, err, apperr.ErrInvalidPointValue)
	_, _, _, err = typeInput([]string{"Tournoi"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSplitConfigArgs(t *testing.T) {
	key, value, desc, ok := splitConfigArgs("note_max 20")
	require.True(t, ok)
	assert.Equal(t, "NOTE_MAX", key)
	assert.Equal(t, "20", value)
	assert.Nil(t, desc)

	_, value, desc, ok = splitConfigArgs("PERCENTILE_NOTES [20,15,10,5] notes par quartile")
	require.True(t, ok)
	assert.Equal(t, "[20,15,10,5]", value)
	require.NotNil(t, desc)
	assert.Equal(t, "notes par quartile", *desc)

	_, _, _, ok = splitConfigArgs("NOTE_MAX")
	assert.False(t, ok)
}
