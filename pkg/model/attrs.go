package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Attrs is a partial attribute mapping used to construct components and case
// metadata. Keys that a kind does not recognize are ignored.
type Attrs map[string]any

// lookup finds name in a, first exactly and then ignoring case and underscores
// so that "gas_molar_mass" resolves "gasMolarMass".
func (a Attrs) lookup(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	if v, ok := a[name]; ok {
		return v, true
	}
	want := foldKey(name)
	for k, v := range a {
		if foldKey(k) == want {
			return v, true
		}
	}
	return nil, false
}

func foldKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// resolver resolves recognized attributes field by field against a default
// table and remembers the first coercion failure.
type resolver struct {
	kind     Kind
	given    Attrs
	defaults Attrs
	errs     []error
}

func newResolver(kind Kind, given Attrs) *resolver {
	return &resolver{kind: kind, given: given, defaults: Defaults(kind)}
}

func (r *resolver) value(name string) any {
	if v, ok := r.given.lookup(name); ok {
		return v
	}
	return r.defaults[name]
}

func (r *resolver) fail(name string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s.%s: %w", r.kind, name, err))
}

func (r *resolver) float(name string) float64 {
	f, err := cast.ToFloat64E(r.value(name))
	if err != nil {
		r.fail(name, err)
	}
	return f
}

func (r *resolver) int(name string) int {
	i, err := cast.ToIntE(r.value(name))
	if err != nil {
		r.fail(name, err)
	}
	return i
}

func (r *resolver) id(name string) int64 {
	i, err := cast.ToInt64E(r.value(name))
	if err != nil {
		r.fail(name, err)
	}
	return i
}

func (r *resolver) string(name string) string {
	s, err := cast.ToStringE(r.value(name))
	if err != nil {
		r.fail(name, err)
	}
	return s
}

func (r *resolver) location(name string) *Location {
	switch v := r.value(name).(type) {
	case nil:
		return nil
	case Location:
		return &v
	case *Location:
		if v == nil {
			return nil
		}
		loc := *v
		return &loc
	case [2]float64:
		return &Location{X: v[0], Y: v[1]}
	case []float64:
		if len(v) == 2 {
			return &Location{X: v[0], Y: v[1]}
		}
	}
	r.fail(name, errors.New("expected an (x, y) pair"))
	return nil
}

func (r *resolver) err() error {
	return errors.Join(r.errs...)
}
