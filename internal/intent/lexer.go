package intent

import (
	"strings"
	"unicode"
)

// splitWords breaks a method name into words at camel-case boundaries and
// at non letter/digit separators:
//
//	FindByNameAndPassword -> Find By Name And Password
//	find_all_by_user_id   -> find all by user id
//	findByURLAndId        -> find By URL And Id
func splitWords(name string) []string {
	runes := []rune(name)
	var (
		words []string
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			// fooBar, foo2Bar
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// URLAnd: the last capital of an acronym starts the next word
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

var verbs = []string{"find", "insert", "update", "delete"}

// expandLead peels verb, "all" and "by" prefixes off a leading word that
// carries no case boundaries, so "findallbyname" reads like "FindAllByName".
// A remainder after "by" is split on "and", the only separator left.
func expandLead(words []string) []string {
	if len(words) == 0 {
		return words
	}
	lead := strings.ToLower(words[0])
	for _, verb := range verbs {
		if lead == verb || !strings.HasPrefix(lead, verb) {
			continue
		}
		out := []string{verb}
		rest := lead[len(verb):]
		if verb == "find" && strings.HasPrefix(rest, "all") {
			out = append(out, "all")
			rest = rest[len("all"):]
		}
		if strings.HasPrefix(rest, "by") {
			out = append(out, "by")
			rest = rest[len("by"):]
			if rest != "" {
				for i, f := range strings.Split(rest, "and") {
					if i > 0 {
						out = append(out, "and")
					}
					out = append(out, f)
				}
				rest = ""
			}
		}
		if rest != "" {
			// not a verb prefix after all, e.g. "findings"
			return words
		}
		return append(out, words[1:]...)
	}
	return words
}
