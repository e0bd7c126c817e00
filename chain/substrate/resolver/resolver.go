package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cordialsys/xcall/chain/substrate/registry"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/sirupsen/logrus"
)

// Literal for an optional value that is not provided
const None = "None"

// ErrNonInteractive is returned by a Source that cannot ask the operator.
var ErrNonInteractive = errors.New("no value supplied and not interactive")

func errNonInteractive(label string) error {
	return fmt.Errorf("%w: %s", ErrNonInteractive, label)
}

// Resolver walks argument descriptors and produces their textual value.
type Resolver struct {
	source Source
}

func New(source Source) *Resolver {
	return &Resolver{source: source}
}

// ResolveAll resolves each top-level argument in order.
func (r *Resolver) ResolveAll(args []*registry.Arg) ([]string, error) {
	values := make([]string, 0, len(args))
	for _, arg := range args {
		value, err := r.Resolve(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// Resolve one argument. A pre-supplied fragment is taken as the whole value of the argument.
func (r *Resolver) Resolve(arg *registry.Arg) (string, error) {
	value, err := r.resolve(arg, arg.Name)
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"argument": arg.Name,
		"value":    value,
	}).Debug("resolved argument")
	return value, nil
}

func resolutionError(path string, cause error) error {
	return xcerrors.Wrap(xcerrors.ArgumentResolutionError, cause, "could not resolve argument %s", path)
}

func (r *Resolver) resolve(arg *registry.Arg, path string) (string, error) {
	if fragment, ok := r.source.NextPositional(); ok {
		return fragment, nil
	}
	if arg.Optional {
		provide, err := r.source.Confirm(fmt.Sprintf("Do you want to provide a value for the optional parameter: %s?", arg.Name), false)
		if err != nil {
			return "", resolutionError(path, err)
		}
		if !provide {
			return None, nil
		}
		value, err := r.resolveRequired(arg, path)
		if err != nil {
			return "", err
		}
		return "Some(" + value + ")", nil
	}
	return r.resolveRequired(arg, path)
}

func (r *Resolver) resolveRequired(arg *registry.Arg, path string) (string, error) {
	switch {
	case arg.IsPrimitive():
		value, err := r.source.Input(
			fmt.Sprintf("Enter the value for the parameter: %s", arg.Name),
			fmt.Sprintf("Type required: %s", arg.TypeName),
			"",
		)
		if err != nil {
			return "", resolutionError(path, err)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return "", resolutionError(path, fmt.Errorf("a value is required"))
		}
		return value, nil

	case arg.Variant:
		choices := make([]Choice, len(arg.Options))
		for i, option := range arg.Options {
			choices[i] = Choice{Value: option.Name, Label: option.Name, Hint: option.TypeName}
		}
		chosen, err := r.source.Select(fmt.Sprintf("Select the value for the parameter: %s", arg.Name), choices)
		if err != nil {
			return "", resolutionError(path, err)
		}
		var option *registry.Arg
		for _, candidate := range arg.Options {
			if candidate.Name == chosen {
				option = candidate
				break
			}
		}
		if option == nil {
			return "", resolutionError(path, fmt.Errorf("%q is not an alternative", chosen))
		}
		if len(option.Options) == 0 {
			return option.Name, nil
		}
		fields, err := r.resolveFields(option.Options, path+"."+option.Name)
		if err != nil {
			return "", err
		}
		return option.Name + "(" + fields + ")", nil

	default:
		return r.resolveFields(arg.Options, path)
	}
}

// resolveFields joins the fields in declared order, the caller supplies any wrapper.
func (r *Resolver) resolveFields(fields []*registry.Arg, path string) (string, error) {
	values := make([]string, len(fields))
	for i, field := range fields {
		value, err := r.resolve(field, path+"."+field.Name)
		if err != nil {
			return "", err
		}
		values[i] = value
	}
	return strings.Join(values, ", "), nil
}
