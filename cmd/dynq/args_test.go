package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/intent"
)

func TestParseArgs(t *testing.T) {
	args, err := parseArgs([]string{"Foo", "42", "1.5", "true", "null", "name=Steve", "age=50", "{b: 2, a: x}", "a=b=c"})
	require.NoError(t, err)
	assert.Equal(t, []intent.Arg{
		intent.Value("Foo"),
		intent.Value(42),
		intent.Value(1.5),
		intent.Value(true),
		intent.Value(nil),
		intent.Named("name", "Steve"),
		intent.Named("age", 50),
		intent.Value(expr.Fields{expr.F("b", 2), expr.F("a", "x")}),
		intent.Named("a", "b=c"),
	}, args)
}

func TestParseArgsRejectsBadYAML(t *testing.T) {
	_, err := parseArgs([]string{"{unclosed"})
	assert.Error(t, err)
}
