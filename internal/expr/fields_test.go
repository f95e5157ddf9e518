package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/dynquery/internal/qerr"
)

func TestFieldsSetKeepsPosition(t *testing.T) {
	fs := NewFields(F("Id", 1), F("Name", "Steve"), F("id", 2))
	require.Len(t, fs, 2)
	assert.Equal(t, []string{"Id", "Name"}, fs.Names())
	assert.Equal(t, []any{2, "Steve"}, fs.Values())
}

func TestFieldsWithoutAndGet(t *testing.T) {
	fs := NewFields(F("Id", 1), F("Name", "Steve"), F("Age", 50))
	rest := fs.Without("ID")
	assert.Equal(t, []string{"Name", "Age"}, rest.Names())
	// the original is untouched
	assert.Len(t, fs, 3)

	v, ok := fs.Get("age")
	assert.True(t, ok)
	assert.Equal(t, 50, v)
	_, ok = fs.Get("password")
	assert.False(t, ok)
}

func TestFieldsNonNil(t *testing.T) {
	fs := Fields{F("Id", 1), F("Email", nil)}
	assert.Equal(t, []string{"Id"}, fs.NonNil().Names())
}

func TestFromCriteriaSingle(t *testing.T) {
	e, err := FromCriteria("users", Fields{F("Id", 1)})
	require.NoError(t, err)
	assert.Equal(t, OpEqual, e.Op())
	ref, v, _ := e.Comparison()
	assert.Equal(t, "users", ref.Table())
	assert.Equal(t, "Id", ref.Column())
	assert.Equal(t, 1, v)
}

func TestFromCriteriaLeftDeepInInsertionOrder(t *testing.T) {
	criteria := Fields{F("a", 1), F("b", 2), F("c", 3), F("d", 4)}
	e, err := FromCriteria("t", criteria)
	require.NoError(t, err)

	assert.Equal(t, len(criteria), e.Leaves())
	assert.Equal(t, "(((t.a == 1 and t.b == 2) and t.c == 3) and t.d == 4)", e.String())

	var cols []string
	for _, r := range e.References() {
		cols = append(cols, r.Column())
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, cols)
}

func TestFromCriteriaEmpty(t *testing.T) {
	_, err := FromCriteria("users", nil)
	assert.True(t, errors.Is(err, qerr.ErrEmptyCriteria))
}
