package service

import (
	"fmt"
	"math"
	"slices"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atlekbai/dynquery/internal/exec"
	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/filter"
	"github.com/atlekbai/dynquery/internal/intent"
	"github.com/atlekbai/dynquery/internal/render"
)

// queryRequest is the decoded form of a request message:
//
//	{
//	  "table":  "users",
//	  "method": "FindByName",
//	  "args":   ["Foo"],                          // positional; objects become records
//	  "named":  [{"name": "Age", "value": 50}],   // or {"Age": 50}
//	  "filter": "age >= 30 and orders.total > 5"  // appended as an expression argument
//	}
//
// Object keys carry no order, so records and named objects are bound in
// sorted key order; use the list form of "named" to control column order.
type queryRequest struct {
	Table  string
	Method string
	Args   []intent.Arg
}

func decodeRequest(msg *structpb.Struct) (*queryRequest, error) {
	fields := msg.GetFields()
	req := &queryRequest{
		Table:  fields["table"].GetStringValue(),
		Method: fields["method"].GetStringValue(),
	}
	if req.Table == "" {
		return nil, fmt.Errorf("table is required")
	}
	if req.Method == "" {
		return nil, fmt.Errorf("method is required")
	}

	for _, v := range fields["args"].GetListValue().GetValues() {
		if obj := v.GetStructValue(); obj != nil {
			req.Args = append(req.Args, intent.Value(recordOf(obj)))
			continue
		}
		req.Args = append(req.Args, intent.Value(goValue(v)))
	}

	named, err := decodeNamed(fields["named"])
	if err != nil {
		return nil, err
	}
	req.Args = append(req.Args, named...)

	if src := fields["filter"].GetStringValue(); src != "" {
		e, err := filter.Parse(src, req.Table)
		if err != nil {
			return nil, err
		}
		req.Args = append(req.Args, intent.Value(e))
	}
	return req, nil
}

func decodeNamed(v *structpb.Value) ([]intent.Arg, error) {
	if v == nil {
		return nil, nil
	}
	if obj := v.GetStructValue(); obj != nil {
		var args []intent.Arg
		for _, k := range sortedKeys(obj) {
			args = append(args, intent.Named(k, goValue(obj.Fields[k])))
		}
		return args, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("named must be an object or a list of {name, value} pairs")
	}
	args := make([]intent.Arg, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		pair := item.GetStructValue().GetFields()
		name := pair["name"].GetStringValue()
		if name == "" {
			return nil, fmt.Errorf("named[%d]: name is required", i)
		}
		args = append(args, intent.Named(name, goValue(pair["value"])))
	}
	return args, nil
}

func recordOf(obj *structpb.Struct) expr.Fields {
	var rec expr.Fields
	for _, k := range sortedKeys(obj) {
		rec = rec.Set(k, goValue(obj.Fields[k]))
	}
	return rec
}

func sortedKeys(obj *structpb.Struct) []string {
	keys := make([]string, 0, len(obj.GetFields()))
	for k := range obj.GetFields() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// goValue converts a protobuf value to a plain Go value. Whole numbers
// become int64.
func goValue(v *structpb.Value) any {
	switch x := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := x.NumberValue
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case *structpb.Value_StringValue:
		return x.StringValue
	case *structpb.Value_BoolValue:
		return x.BoolValue
	case *structpb.Value_ListValue, *structpb.Value_StructValue:
		return v.AsInterface()
	default:
		return nil
	}
}

// protoValue converts a database value for a response. Values structpb
// cannot hold are rendered as text.
func protoValue(v any) *structpb.Value {
	switch x := v.(type) {
	case time.Time:
		return structpb.NewStringValue(x.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return structpb.NewStringValue(x.String())
	}
	pv, err := structpb.NewValue(v)
	if err != nil {
		return structpb.NewStringValue(fmt.Sprint(v))
	}
	return pv
}

func statementStruct(st *render.Statement) *structpb.Struct {
	args := make([]*structpb.Value, len(st.Args))
	for i, a := range st.Args {
		args[i] = protoValue(a)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":     structpb.NewStringValue(st.ID.String()),
		"op":     structpb.NewStringValue(st.Op.String()),
		"table":  structpb.NewStringValue(st.Table),
		"sql":    structpb.NewStringValue(st.SQL),
		"args":   structpb.NewListValue(&structpb.ListValue{Values: args}),
		"single": structpb.NewBoolValue(st.Single),
	}}
}

func resultStruct(st *render.Statement, res *exec.Result) *structpb.Struct {
	columns := make([]*structpb.Value, len(res.Columns))
	for i, c := range res.Columns {
		columns[i] = structpb.NewStringValue(c)
	}
	rows := make([]*structpb.Value, len(res.Rows))
	for i, row := range res.Rows {
		fields := make(map[string]*structpb.Value, len(row))
		for k, v := range row {
			fields[k] = protoValue(v)
		}
		rows[i] = structpb.NewStructValue(&structpb.Struct{Fields: fields})
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"statement":     structpb.NewStructValue(statementStruct(st)),
		"columns":       structpb.NewListValue(&structpb.ListValue{Values: columns}),
		"rows":          structpb.NewListValue(&structpb.ListValue{Values: rows}),
		"rows_affected": structpb.NewNumberValue(float64(res.RowsAffected)),
	}}
}
