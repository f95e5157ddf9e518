package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/atlekbai/dynquery/internal/command"
	"github.com/atlekbai/dynquery/internal/exec"
	"github.com/atlekbai/dynquery/internal/filter"
	"github.com/atlekbai/dynquery/internal/intent"
	"github.com/atlekbai/dynquery/internal/join"
	"github.com/atlekbai/dynquery/internal/render"
	"github.com/atlekbai/dynquery/internal/schema"
)

type compileOptions struct {
	schemaPath string
	dialect    string
	where      string
	joinType   string
	noLike     bool
}

func (o *compileOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.schemaPath, "schema", "schema.yaml", "Path to schema file")
	cmd.Flags().StringVar(&o.dialect, "dialect", "", "SQL dialect (sqlserver, postgres, mysql, sqlite); defaults to the schema file's")
	cmd.Flags().StringVar(&o.where, "where", "", "Filter expression passed as an extra argument")
	cmd.Flags().StringVar(&o.joinType, "join", "inner", "Join type for inferred joins (inner, left)")
	cmd.Flags().BoolVar(&o.noLike, "no-like", false, "Render string equality as = instead of LIKE")
}

// compile loads the schema and compiles one request.
func (o *compileOptions) compile(ctx context.Context, args []string) (*render.Statement, error) {
	cache, err := schema.LoadFile(o.schemaPath, o.dialect)
	if err != nil {
		return nil, err
	}
	jt, err := join.ParseType(o.joinType)
	if err != nil {
		return nil, err
	}

	table, method := args[0], args[1]
	callArgs, err := parseArgs(args[2:])
	if err != nil {
		return nil, err
	}
	if o.where != "" {
		e, err := filter.Parse(o.where, table)
		if err != nil {
			return nil, err
		}
		callArgs = append(callArgs, intent.Value(e))
	}

	d := command.New(cache, command.WithJoinType(jt), command.WithLikeStrings(!o.noLike))
	return d.Dispatch(ctx, table, method, callArgs)
}

func newCompileCommand() *cobra.Command {
	var opts compileOptions
	cmd := &cobra.Command{
		Use:   "compile TABLE METHOD [ARG...]",
		Short: "Print the SQL and parameters for a request",
		Example: `  dynq compile users FindByName Foo
  dynq compile users Insert name=Steve age=50
  dynq compile users UpdateById id=1 name=Steve
  dynq compile users FindAll --where 'age >= 30 and orders.total > 100'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.compile(cmd.Context(), args)
			if err != nil {
				return err
			}
			printStatement(cmd.OutOrStdout(), st)
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newRunCommand() *cobra.Command {
	var (
		opts   compileOptions
		driver string
		dsn    string
	)
	cmd := &cobra.Command{
		Use:   "run TABLE METHOD [ARG...]",
		Short: "Compile a request and run it against a database",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.compile(cmd.Context(), args)
			if err != nil {
				return err
			}
			db, err := exec.OpenDB(cmd.Context(), driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := exec.NewSQLExecutor(db).Exec(cmd.Context(), st)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printStatement(out, st)
			printResult(out, res)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&driver, "driver", "sqlite", "database/sql driver (sqlite, mysql, postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Data source name")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}

func newTablesCommand() *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := schema.LoadFile(schemaPath, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range cache.Tables() {
				fmt.Fprintf(out, "%s (%d columns, key %s)\n",
					color.CyanString(t.ActualName), len(t.Columns), strings.Join(t.KeyColumnNames, ", "))
				for _, fk := range t.ForeignKeys {
					fmt.Fprintf(out, "  %s -> %s(%s)\n",
						strings.Join(fk.DetailColumns, ", "), fk.MasterTable, strings.Join(fk.MasterColumns, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "schema.yaml", "Path to schema file")
	return cmd
}

func printStatement(w io.Writer, st *render.Statement) {
	fmt.Fprintln(w, color.CyanString(st.SQL))
	for i, a := range st.Args {
		fmt.Fprintf(w, "  %s %s\n", color.YellowString("$%d", i+1), formatValue(a))
	}
}

func printResult(w io.Writer, res *exec.Result) {
	if res.Columns == nil {
		fmt.Fprintln(w, color.GreenString("%d row(s) affected", res.RowsAffected))
		return
	}
	fmt.Fprintln(w, color.New(color.Bold).Sprint(strings.Join(res.Columns, "\t")))
	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i, c := range res.Columns {
			cells[i] = formatValue(row[c])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	fmt.Fprintln(w, color.GreenString("%d row(s)", len(res.Rows)))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprint(x)
	}
}
