package filter

import (
	"testing"
)

func collectTokens(t *testing.T, input string) []Token {
	t.Helper()
	lex := NewLexer(input)
	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("lexer error on %q: %v", input, err)
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return tokens
}

func TestLexerOperators(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"==", TokEq},
		{"!=", TokNeq},
		{"<>", TokNeq},
		{">", TokGt},
		{">=", TokGte},
		{"<", TokLt},
		{"<=", TokLte},
		{".", TokDot},
		{"(", TokLParen},
		{")", TokRParen},
		{"-", TokMinus},
	}
	for _, tt := range tests {
		toks := collectTokens(t, tt.input)
		if len(toks) != 2 { // token + EOF
			t.Errorf("input %q: expected 2 tokens, got %d", tt.input, len(toks))
			continue
		}
		if toks[0].Kind != tt.kind {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.kind, toks[0].Kind)
		}
	}
}

func TestLexerKeywordsIgnoreCase(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"and", TokAnd},
		{"AND", TokAnd},
		{"Or", TokOr},
		{"LIKE", TokLike},
		{"null", TokNull},
		{"True", TokTrue},
		{"false", TokFalse},
		{"android", TokIdent},
	}
	for _, tt := range tests {
		toks := collectTokens(t, tt.input)
		if toks[0].Kind != tt.kind {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.kind, toks[0].Kind)
		}
	}
}

func TestLexerLiterals(t *testing.T) {
	toks := collectTokens(t, `users.name == "Fo\"o" and 3.14 < 42`)
	want := []struct {
		kind TokenKind
		lit  string
	}{
		{TokIdent, "users"},
		{TokDot, "."},
		{TokIdent, "name"},
		{TokEq, "=="},
		{TokString, `Fo\"o`},
		{TokAnd, "and"},
		{TokNumber, "3.14"},
		{TokLt, "<"},
		{TokNumber, "42"},
		{TokEOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Lit != w.lit {
			t.Errorf("token %d: expected %v %q, got %v", i, w.kind, w.lit, toks[i])
		}
	}
}

func TestLexerPositions(t *testing.T) {
	toks := collectTokens(t, "a  >= 1")
	if toks[1].Pos != 3 {
		t.Fatalf("expected >= at position 3, got %d", toks[1].Pos)
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{`"open`, "a = 1", "a ! 1", "a # 1"} {
		lex := NewLexer(input)
		var err error
		for {
			var tok Token
			tok, err = lex.Next()
			if err != nil || tok.Kind == TokEOF {
				break
			}
		}
		if err == nil {
			t.Errorf("input %q: expected lexer error", input)
		}
	}
}
