package main

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/intent"
)

var namedArg = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// parseArgs reads command-line arguments as YAML values. "name=value" is a
// named argument and a flow mapping such as "{name: Steve, age: 50}" is a
// record whose fields keep their written order.
func parseArgs(raw []string) ([]intent.Arg, error) {
	args := make([]intent.Arg, 0, len(raw))
	for _, s := range raw {
		if m := namedArg.FindStringSubmatch(s); m != nil {
			v, err := parseValue(m[2])
			if err != nil {
				return nil, fmt.Errorf("argument %q: %w", s, err)
			}
			args = append(args, intent.Named(m[1], v))
			continue
		}
		v, err := parseValue(s)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", s, err)
		}
		args = append(args, intent.Value(v))
	}
	return args, nil
}

func parseValue(s string) (any, error) {
	if s == "" {
		return "", nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	return nodeValue(doc.Content[0])
}

func nodeValue(n *yaml.Node) (any, error) {
	if n.Kind != yaml.MappingNode {
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	var rec expr.Fields
	for i := 0; i+1 < len(n.Content); i += 2 {
		v, err := nodeValue(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		rec = rec.Set(n.Content[i].Value, v)
	}
	return rec, nil
}
