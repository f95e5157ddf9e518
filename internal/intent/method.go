package intent

import (
	"fmt"
	"strings"

	"github.com/atlekbai/dynquery/internal/qerr"
)

// Verb is the leading action word of a request name.
type Verb int

const (
	VerbFind Verb = iota
	VerbInsert
	VerbUpdate
	VerbDelete
)

var verbNames = map[Verb]string{
	VerbFind:   "find",
	VerbInsert: "insert",
	VerbUpdate: "update",
	VerbDelete: "delete",
}

func (v Verb) String() string {
	if s, ok := verbNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}

// Method is a request name broken into its parts.
type Method struct {
	Name string
	Verb Verb
	All  bool     // findall
	By   []string // fields of a By<F1>And<F2>... suffix, in order
}

// HasBy reports whether the name carried a By suffix.
func (m Method) HasBy() bool { return len(m.By) > 0 }

// ParseMethod parses a request name such as "FindAllByNameAndAge". Matching
// is case-insensitive; see splitWords for the word boundaries it honors.
//
//	method = verb [ "all" ] [ "by" field { "and" field } ]
//	verb   = "find" | "insert" | "update" | "delete"
//
// "all" only follows "find", and "insert" takes no By suffix.
func ParseMethod(name string) (Method, error) {
	words := expandLead(splitWords(name))
	if len(words) == 0 {
		return Method{}, unknownMethod(name, "empty name")
	}

	m := Method{Name: name}
	switch strings.ToLower(words[0]) {
	case "find":
		m.Verb = VerbFind
	case "insert":
		m.Verb = VerbInsert
	case "update":
		m.Verb = VerbUpdate
	case "delete":
		m.Verb = VerbDelete
	default:
		return Method{}, unknownMethod(name, fmt.Sprintf("unrecognized verb %q", words[0]))
	}

	i := 1
	if m.Verb == VerbFind && i < len(words) && strings.EqualFold(words[i], "all") {
		m.All = true
		i++
	}
	if i == len(words) {
		return m, nil
	}
	if !strings.EqualFold(words[i], "by") {
		return Method{}, unknownMethod(name, fmt.Sprintf("unexpected %q after %s", words[i], m.Verb))
	}
	if m.Verb == VerbInsert {
		return Method{}, unknownMethod(name, "insert takes no By suffix")
	}
	i++

	var cur []string
	for ; i < len(words); i++ {
		if strings.EqualFold(words[i], "and") {
			if len(cur) == 0 {
				return Method{}, unknownMethod(name, "empty field name in By suffix")
			}
			m.By = append(m.By, strings.Join(cur, ""))
			cur = nil
			continue
		}
		cur = append(cur, words[i])
	}
	if len(cur) == 0 {
		return Method{}, unknownMethod(name, "By suffix names no field")
	}
	m.By = append(m.By, strings.Join(cur, ""))
	return m, nil
}

func unknownMethod(name, reason string) error {
	return fmt.Errorf("%w: %q: %s", qerr.ErrUnknownOperation, name, reason)
}
