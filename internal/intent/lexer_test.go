package intent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/dynquery/internal/qerr"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"FindByNameAndPassword", []string{"Find", "By", "Name", "And", "Password"}},
		{"find_all_by_user_id", []string{"find", "all", "by", "user", "id"}},
		{"findByURLAndId", []string{"find", "By", "URL", "And", "Id"}},
		{"FindBy2fa", []string{"Find", "By2fa"}},
		{"findall", []string{"findall"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitWords(tt.input), tt.input)
	}
}

func TestExpandLead(t *testing.T) {
	tests := []struct {
		input []string
		want  []string
	}{
		{[]string{"findallbyname"}, []string{"find", "all", "by", "name"}},
		{[]string{"findbynameandpassword"}, []string{"find", "by", "name", "and", "password"}},
		{[]string{"findall"}, []string{"find", "all"}},
		{[]string{"updatebyid"}, []string{"update", "by", "id"}},
		{[]string{"findings"}, []string{"findings"}},
		{[]string{"find", "By", "Id"}, []string{"find", "By", "Id"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandLead(tt.input), tt.input)
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name string
		verb Verb
		all  bool
		by   []string
	}{
		{"Find", VerbFind, false, nil},
		{"FindAll", VerbFind, true, nil},
		{"findall", VerbFind, true, nil},
		{"FindByName", VerbFind, false, []string{"Name"}},
		{"FindAllByNameAndAge", VerbFind, true, []string{"Name", "Age"}},
		{"findbynameandpassword", VerbFind, false, []string{"name", "password"}},
		{"find_by_user_id", VerbFind, false, []string{"userid"}},
		{"findByURLAndId", VerbFind, false, []string{"URL", "Id"}},
		{"Insert", VerbInsert, false, nil},
		{"Update", VerbUpdate, false, nil},
		{"UpdateById", VerbUpdate, false, []string{"Id"}},
		{"DELETEBYID", VerbDelete, false, []string{"id"}},
		{"Delete", VerbDelete, false, nil},
		{"DeleteByOrderIdAndLine", VerbDelete, false, []string{"OrderId", "Line"}},
	}
	for _, tt := range tests {
		m, err := ParseMethod(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.verb, m.Verb, tt.name)
		assert.Equal(t, tt.all, m.All, tt.name)
		assert.Equal(t, tt.by, m.By, tt.name)
		assert.Equal(t, tt.name, m.Name)
	}
}

func TestParseMethodRejects(t *testing.T) {
	for _, name := range []string{
		"",
		"FindOne",
		"findings",
		"Select",
		"InsertById",
		"InsertAll",
		"UpdateAll",
		"FindBy",
		"FindByNameAnd",
		"FindByAndName",
	} {
		_, err := ParseMethod(name)
		assert.True(t, errors.Is(err, qerr.ErrUnknownOperation), "%q: %v", name, err)
	}
}
