package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/enums/internal/ir"
)

// CompileYAML compiles the enumerations of a YAML document:
//
//	enums:
//	  Color:
//	    kind: enum
//	    members:
//	      RED: 1
//	      GREEN: ~     # auto
//
// The document is read as a yaml.Node tree so that member order survives.
// Unknown fields are errors. filename is used in error positions.
func CompileYAML(filename string, data []byte, failFast bool) ([]ir.Definition, []error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []error{&CompileError{Field: "yaml", Message: err.Error(), File: filename}}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, []error{yamlError(filename, root, "document", "top level must be a mapping")}
	}

	var enumsNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if key.Value != "enums" {
			return nil, []error{yamlError(filename, key, key.Value, "unknown top-level field")}
		}
		enumsNode = resolveAlias(root.Content[i+1])
	}
	if enumsNode == nil || enumsNode.ShortTag() == "!!null" {
		return nil, nil
	}
	if enumsNode.Kind != yaml.MappingNode {
		return nil, []error{yamlError(filename, enumsNode, "enums", "must be a mapping of enumeration names")}
	}

	var (
		defs []ir.Definition
		errs []error
	)
	for i := 0; i+1 < len(enumsNode.Content); i += 2 {
		name := enumsNode.Content[i].Value
		def, err := compileYAMLDefinition(filename, name, resolveAlias(enumsNode.Content[i+1]))
		if err != nil {
			errs = append(errs, fmt.Errorf("enums.%s: %w", name, err))
			if failFast {
				return defs, errs
			}
			continue
		}
		defs = append(defs, *def)
	}
	return defs, errs
}

func compileYAMLDefinition(filename, name string, node *yaml.Node) (*ir.Definition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, yamlError(filename, node, name, "definition must be a mapping")
	}

	def := &ir.Definition{Name: name}
	var sawKind, sawMembers bool
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		val := resolveAlias(node.Content[i+1])

		switch key.Value {
		case "kind":
			if err := val.Decode(&def.Kind); err != nil {
				return nil, yamlError(filename, val, "kind", err.Error())
			}
			sawKind = true
		case "value_type":
			if err := val.Decode(&def.ValueType); err != nil {
				return nil, yamlError(filename, val, "value_type", err.Error())
			}
		case "start":
			start, err := yamlToValue(filename, val, "start")
			if err != nil {
				return nil, err
			}
			def.Start = start
		case "unique":
			if err := val.Decode(&def.Unique); err != nil {
				return nil, yamlError(filename, val, "unique", err.Error())
			}
		case "ignore":
			names, err := yamlIgnore(filename, val)
			if err != nil {
				return nil, err
			}
			def.Ignore = names
		case "members":
			members, err := yamlMembers(filename, val)
			if err != nil {
				return nil, err
			}
			def.Members = members
			sawMembers = true
		default:
			return nil, yamlError(filename, key, key.Value, "unknown field")
		}
	}

	if !sawKind {
		return nil, yamlError(filename, node, "kind", "kind is required")
	}
	if !sawMembers {
		return nil, yamlError(filename, node, "members", "members are required")
	}
	return def, nil
}

func yamlMembers(filename string, node *yaml.Node) ([]ir.Declaration, error) {
	var members []ir.Declaration
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return nil, yamlError(filename, item, "members", "member list entries must be names")
			}
			members = append(members, ir.Declaration{Name: item.Value, Auto: true})
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			name := node.Content[i].Value
			val := resolveAlias(node.Content[i+1])
			if val.Kind == yaml.ScalarNode && val.ShortTag() == "!!null" {
				members = append(members, ir.Declaration{Name: name, Auto: true})
				continue
			}
			value, err := yamlToValue(filename, val, "members."+name)
			if err != nil {
				return nil, err
			}
			members = append(members, ir.Declaration{Name: name, Value: value})
		}
	default:
		if node.ShortTag() == "!!null" {
			return nil, nil
		}
		return nil, yamlError(filename, node, "members", "members must be a mapping or a list of names")
	}
	return members, nil
}

func yamlIgnore(filename string, node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return splitNames(node.Value), nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return nil, yamlError(filename, node, "ignore", err.Error())
		}
		return names, nil
	default:
		return nil, yamlError(filename, node, "ignore", "ignore must be a string or a list of names")
	}
}

// yamlToValue converts a YAML node to an ir.Value using its resolved tag.
func yamlToValue(filename string, node *yaml.Node, field string) (ir.Value, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return ir.Null{}, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, yamlError(filename, node, field, err.Error())
			}
			return ir.Bool(b), nil
		case "!!int":
			var n int64
			if err := node.Decode(&n); err != nil {
				return nil, yamlError(filename, node, field, err.Error())
			}
			return ir.Int(n), nil
		case "!!str":
			return ir.String(node.Value), nil
		case "!!float":
			return nil, yamlError(filename, node, field, "floats are not member values, use int instead")
		default:
			return nil, yamlError(filename, node, field, fmt.Sprintf("unsupported scalar tag %s", node.ShortTag()))
		}
	case yaml.SequenceNode:
		arr := make(ir.Array, 0, len(node.Content))
		for i, item := range node.Content {
			elem, err := yamlToValue(filename, item, fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := make(ir.Object, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			elem, err := yamlToValue(filename, node.Content[i+1], field+"."+key)
			if err != nil {
				return nil, err
			}
			obj[key] = elem
		}
		return obj, nil
	default:
		return nil, yamlError(filename, node, field, "unsupported YAML node")
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func yamlError(filename string, node *yaml.Node, field, msg string) *CompileError {
	return &CompileError{
		Field:   field,
		Message: msg,
		File:    filename,
		Line:    node.Line,
		Column:  node.Column,
	}
}
