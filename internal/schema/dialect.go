package schema

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// Dialect captures what differs between SQL targets: identifier quoting and
// placeholder style.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// StatementIdentifier quotes name for statement text that still goes
	// through the placeholder format, escaping any ? it contains.
	StatementIdentifier(name string) string
	// Placeholders formats the ? markers of SELECT, UPDATE and DELETE statements.
	Placeholders() sq.PlaceholderFormat
	// InsertPlaceholders formats the ? markers of INSERT statements.
	InsertPlaceholders() sq.PlaceholderFormat
}

type dialect struct {
	name     string
	quote    func(string) string
	ph       sq.PlaceholderFormat
	insertPh sq.PlaceholderFormat
	// numbered formats rewrite ? and read ?? as a literal ?
	numbered bool
}

func (d *dialect) Name() string                             { return d.name }
func (d *dialect) QuoteIdentifier(name string) string       { return d.quote(name) }
func (d *dialect) Placeholders() sq.PlaceholderFormat       { return d.ph }
func (d *dialect) InsertPlaceholders() sq.PlaceholderFormat { return d.insertPh }

func (d *dialect) StatementIdentifier(name string) string {
	q := d.quote(name)
	if !d.numbered {
		return q
	}
	return strings.ReplaceAll(q, "?", "??")
}

var (
	// SQLServer quotes with brackets and numbers parameters @p1, @p2...
	// Insert statements number their parameters from @p0.
	SQLServer Dialect = &dialect{
		name:     "sqlserver",
		quote:    quoteBracket,
		ph:       sq.AtP,
		insertPh: Positional("@p", 0),
		numbered: true,
	}
	Postgres Dialect = &dialect{
		name:     "postgres",
		quote:    pq.QuoteIdentifier,
		ph:       sq.Dollar,
		insertPh: sq.Dollar,
		numbered: true,
	}
	MySQL Dialect = &dialect{
		name:     "mysql",
		quote:    quoteBacktick,
		ph:       sq.Question,
		insertPh: sq.Question,
	}
	SQLite Dialect = &dialect{
		name:     "sqlite",
		quote:    QuoteIdent,
		ph:       sq.Question,
		insertPh: sq.Question,
	}
)

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return nil, fmt.Errorf("unknown sql dialect %q", name)
	}
}

// QuoteIdent quotes a SQL identifier, escaping embedded double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteBracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func quoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Positional returns a placeholder format that rewrites each ? as prefix
// followed by a counter starting at base. "??" is an escaped literal "?".
func Positional(prefix string, base int) sq.PlaceholderFormat {
	return positional{prefix: prefix, base: base}
}

type positional struct {
	prefix string
	base   int
}

func (p positional) ReplacePlaceholders(sql string) (string, error) {
	var b strings.Builder
	n := p.base
	for {
		i := strings.Index(sql, "?")
		if i == -1 {
			break
		}
		b.WriteString(sql[:i])
		if strings.HasPrefix(sql[i:], "??") {
			b.WriteString("?")
			sql = sql[i+2:]
			continue
		}
		fmt.Fprintf(&b, "%s%d", p.prefix, n)
		n++
		sql = sql[i+1:]
	}
	b.WriteString(sql)
	return b.String(), nil
}
