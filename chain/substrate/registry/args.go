package registry

import (
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Arg describes one argument as a tree. It is in one of three shapes:
//   - primitive: no Options, Variant is false
//   - variant: Variant is true, each option is one alternative whose own options are its fields
//   - composite: Variant is false, each option is one field
//
// Optional may wrap any of the three shapes.
type Arg struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name"`
	// Type id in the metadata lookup that a resolved value of this argument is encoded against.
	TypeID   int64  `json:"type_id"`
	Optional bool   `json:"optional,omitempty"`
	Variant  bool   `json:"variant,omitempty"`
	Options  []*Arg `json:"options,omitempty"`
}

func (arg *Arg) IsPrimitive() bool {
	return len(arg.Options) == 0
}

func (arg *Arg) IsComposite() bool {
	return !arg.Variant && len(arg.Options) > 0
}

// Label renders an argument for a listing, e.g. "dest: MultiAddress<AccountId32, ()>".
func (arg *Arg) Label() string {
	typeName := arg.TypeName
	if arg.Optional && !strings.HasPrefix(typeName, "Option<") {
		typeName = "Option<" + typeName + ">"
	}
	if arg.Name == "" || isPositional(arg.Name) {
		return typeName
	}
	return arg.Name + ": " + typeName
}

// unnamed fields are named by their position
func isPositional(name string) bool {
	for _, c := range name {
		if c < '0' || c > '9' {
			return false
		}
	}
	return name != ""
}

// FieldsLabel renders the fields of a variant alternative, e.g. "(AccountId32)".
func FieldsLabel(args []*Arg) string {
	if len(args) == 0 {
		return ""
	}
	labels := make([]string, len(args))
	for i, arg := range args {
		labels[i] = arg.Label()
	}
	return "(" + strings.Join(labels, ", ") + ")"
}

type argBuilder struct {
	lookup *Lookup
	// types on the current path, to cut recursive types
	visiting map[int64]bool
}

func newArgBuilder(lookup *Lookup) *argBuilder {
	return &argBuilder{lookup: lookup, visiting: map[int64]bool{}}
}

func fieldName(field types.Si1Field, index int) string {
	if field.HasName {
		return string(field.Name)
	}
	return fmt.Sprintf("%d", index)
}

func (b *argBuilder) fromField(field types.Si1Field, index int) (*Arg, error) {
	return b.fromType(fieldName(field, index), field.Type.Int64())
}

func (b *argBuilder) fromType(name string, id int64) (*Arg, error) {
	ty, err := b.lookup.Get(id)
	if err != nil {
		return nil, err
	}
	arg := &Arg{
		Name:     name,
		TypeName: b.lookup.TypeName(id),
		TypeID:   id,
	}
	if b.visiting[id] {
		// recursive type, the operator enters it as one value
		return arg, nil
	}
	b.visiting[id] = true
	defer delete(b.visiting, id)

	if innerID, ok := IsOption(ty); ok {
		inner, err := b.fromType(name, innerID)
		if err != nil {
			return nil, err
		}
		if inner.Optional {
			// Option<Option<T>> is entered as one value
			arg.Optional = true
			return arg, nil
		}
		inner.Optional = true
		inner.TypeID = id
		return inner, nil
	}

	def := ty.Def
	switch {
	case def.IsVariant:
		if len(def.Variant.Variants) == 0 {
			return arg, nil
		}
		arg.Variant = true
		for _, variant := range def.Variant.Variants {
			option := &Arg{
				Name:   string(variant.Name),
				TypeID: id,
			}
			for i, field := range variant.Fields {
				child, err := b.fromField(field, i)
				if err != nil {
					return nil, err
				}
				option.Options = append(option.Options, child)
			}
			option.TypeName = FieldsLabel(option.Options)
			arg.Options = append(arg.Options, option)
		}
		return arg, nil
	case def.IsComposite:
		fields := def.Composite.Fields
		if len(fields) == 1 {
			return b.collapse(arg, fields[0].Type.Int64())
		}
		for i, field := range fields {
			child, err := b.fromField(field, i)
			if err != nil {
				return nil, err
			}
			arg.Options = append(arg.Options, child)
		}
		return arg, nil
	case def.IsTuple:
		if len(def.Tuple) == 1 {
			return b.collapse(arg, def.Tuple[0].Int64())
		}
		for i, elem := range def.Tuple {
			child, err := b.fromType(fmt.Sprintf("%d", i), elem.Int64())
			if err != nil {
				return nil, err
			}
			arg.Options = append(arg.Options, child)
		}
		return arg, nil
	}
	return arg, nil
}

// collapse a single-field wrapper into the shape of its field, keeping the wrapper's name, label and type.
func (b *argBuilder) collapse(outer *Arg, innerID int64) (*Arg, error) {
	inner, err := b.fromType(outer.Name, innerID)
	if err != nil {
		return nil, err
	}
	if inner.Optional {
		// the wrapper is not itself an Option, so the value must be typed as Some(..)/None
		return outer, nil
	}
	inner.TypeName = outer.TypeName
	inner.TypeID = outer.TypeID
	return inner, nil
}
