// Package dispatch implements the command dispatcher (spec §4.1, §9): a
// static registry mapping command names to handler descriptors, with
// parameter extraction handled by a small generic interpreter over each
// handler's declared parameter spec rather than per-handler boilerplate.
package dispatch

import (
	"fmt"
	"strconv"

	"equion/internal/apperr"
)

// Kind is the type a parameter is coerced to.
type Kind int

const (
	KindString Kind = iota
	KindOptionalString
	KindNumeric
	KindOptionalNumeric
)

// ParamSpec describes one handler parameter: its name (the JSON key) and
// kind. Required parameters absent from the input yield "Missing <name>";
// present-but-wrong-shape values yield "Invalid <name>" (spec §4.1).
type ParamSpec struct {
	Name string
	Kind Kind
}

// Args is the result of extracting a command's declared parameters from the
// raw JSON object; handlers read from it instead of re-validating presence.
type Args struct {
	raw map[string]any
}

// Extract builds an Args from raw params against specs, applying the
// Missing/Invalid coercion contract.
func Extract(raw map[string]any, specs []ParamSpec) (*Args, error) {
	for _, spec := range specs {
		v, present := raw[spec.Name]

		switch spec.Kind {
		case KindString:
			if !present {
				return nil, apperr.Missing(spec.Name)
			}
			if _, ok := v.(string); !ok {
				return nil, apperr.Invalid(spec.Name)
			}
		case KindOptionalString:
			if present {
				if _, ok := v.(string); !ok {
					return nil, apperr.Invalid(spec.Name)
				}
			}
		case KindNumeric:
			if !present {
				return nil, apperr.Missing(spec.Name)
			}
			if _, err := coerceNumeric(v); err != nil {
				return nil, apperr.Invalid(spec.Name)
			}
		case KindOptionalNumeric:
			if present {
				if _, err := coerceNumeric(v); err != nil {
					return nil, apperr.Invalid(spec.Name)
				}
			}
		}
	}

	return &Args{raw: raw}, nil
}

func coerceNumeric(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, err
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not numeric")
	}
}

// String returns a required string parameter already validated present by
// Extract.
func (a *Args) String(name string) string {
	s, _ := a.raw[name].(string)
	return s
}

// OptString returns an optional string parameter, or nil if absent.
func (a *Args) OptString(name string) *string {
	v, present := a.raw[name]
	if !present {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// Int returns a required numeric parameter as an int.
func (a *Args) Int(name string) int {
	f, _ := coerceNumeric(a.raw[name])
	return int(f)
}

// OptInt returns an optional numeric parameter, or nil if absent.
func (a *Args) OptInt(name string) *int {
	v, present := a.raw[name]
	if !present {
		return nil
	}
	f, err := coerceNumeric(v)
	if err != nil {
		return nil
	}
	i := int(f)
	return &i
}

// Raw exposes the underlying map for parameters with ad-hoc shapes (nested
// objects like sendMessage's attachment).
func (a *Args) Raw(name string) (any, bool) {
	v, ok := a.raw[name]
	return v, ok
}
