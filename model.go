package stencil

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

var (
	// ErrNotIterable is returned when an iteration helper is passed a
	// value that is not a slice, an array, a map with string keys, or an
	// Entries implementation.
	ErrNotIterable = errors.New("value is not iterable")

	// ErrInvalidModel is returned when a template passes something other
	// than a Model (or a map[string]any) where a Model is expected.
	ErrInvalidModel = errors.New("value is not a model")
)

// Model is the data a template is rendered with. Keys are the variables
// visible to the template.
type Model map[string]any

// Clone returns a shallow copy of the Model. Cloning a nil Model returns an
// empty, non-nil Model.
func (m Model) Clone() Model {
	res := make(Model, len(m)+2)
	for k, v := range m {
		res[k] = v
	}
	return res
}

// Entry is a single key/value pair yielded when iterating. Key is an int for
// slices and arrays and a string for maps.
type Entry struct {
	Key   any
	Value any
}

// Entries is an interface iterables can fulfill to control their own
// enumeration order. Go maps have no natural order, so a type that needs
// its items rendered in insertion order should implement Entries.
type Entries interface {
	Entries() []Entry
}

// EntryList is an ordered list of entries. It is what Filter and Map return
// when passed an Entries implementation.
type EntryList []Entry

// Entries returns the list itself.
func (l EntryList) Entries() []Entry {
	return l
}

// Predicate decides whether Filter keeps value. key is the index or map key
// the value was found under, and iterable is the whole collection.
type Predicate func(value, key, iterable any) bool

// Mapper returns the value Map should put in place of value.
type Mapper func(value, key, iterable any) any

// enumerate lists the entries of iterable in its enumeration order: index
// order for slices and arrays, ascending key order for maps.
func enumerate(iterable any) ([]Entry, error) {
	if list, ok := iterable.(Entries); ok {
		return list.Entries(), nil
	}
	val := reflect.ValueOf(iterable)
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		results := make([]Entry, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			results = append(results, Entry{Key: i, Value: val.Index(i).Interface()})
		}
		return results, nil
	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %T has non-string keys", ErrNotIterable, iterable)
		}
		keys := val.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		results := make([]Entry, 0, len(keys))
		for _, key := range keys {
			results = append(results, Entry{Key: key.String(), Value: val.MapIndex(key).Interface()})
		}
		return results, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotIterable, iterable)
	}
}

// shape reports how a filtered or mapped result should be rebuilt.
type shape int

const (
	shapeList shape = iota
	shapeKeyed
	shapeModel
	shapeEntries
)

func shapeOf(iterable any) shape {
	switch iterable.(type) {
	case Entries:
		return shapeEntries
	case Model:
		return shapeModel
	}
	if reflect.ValueOf(iterable).Kind() == reflect.Map {
		return shapeKeyed
	}
	return shapeList
}

func rebuild(s shape, items []Entry) any {
	switch s {
	case shapeKeyed:
		res := make(map[string]any, len(items))
		for _, item := range items {
			res[item.Key.(string)] = item.Value
		}
		return res
	case shapeModel:
		res := make(Model, len(items))
		for _, item := range items {
			res[item.Key.(string)] = item.Value
		}
		return res
	case shapeEntries:
		return EntryList(items)
	default:
		res := make([]any, 0, len(items))
		for _, item := range items {
			res = append(res, item.Value)
		}
		return res
	}
}

// Filter returns the entries of iterable that pred keeps, in the same shape
// it was given: a []any for slices and arrays, a Model for Models, a
// map[string]any for other maps and an EntryList for Entries. iterable is never modified.
func Filter(iterable any, pred Predicate) (any, error) {
	items, err := enumerate(iterable)
	if err != nil {
		return nil, err
	}
	kept := make([]Entry, 0, len(items))
	for _, item := range items {
		if pred(item.Value, item.Key, iterable) {
			kept = append(kept, item)
		}
	}
	return rebuild(shapeOf(iterable), kept), nil
}

// Map returns iterable with every value replaced by the output of fn, in the
// same shape it was given. Keys and order are preserved and iterable is never
// modified.
func Map(iterable any, fn Mapper) (any, error) {
	items, err := enumerate(iterable)
	if err != nil {
		return nil, err
	}
	mapped := make([]Entry, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, Entry{Key: item.Key, Value: fn(item.Value, item.Key, iterable)})
	}
	return rebuild(shapeOf(iterable), mapped), nil
}

// absent reports whether x holds no value at all: a nil interface or a nil
// pointer.
func absent(x any) bool {
	if x == nil {
		return true
	}
	val := reflect.ValueOf(x)
	return val.Kind() == reflect.Pointer && val.IsNil()
}

// toModel converts template arguments into a Model.
func toModel(args ...any) (Model, error) {
	if len(args) < 1 || args[0] == nil {
		return Model{}, nil
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("%w: expected at most one model, got %d", ErrInvalidModel, len(args))
	}
	switch model := args[0].(type) {
	case Model:
		return model, nil
	case map[string]any:
		return Model(model), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidModel, args[0])
	}
}

// dict builds a Model from alternating keys and values.
func dict(pairs ...any) (Model, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: dict needs an even number of arguments, got %d", ErrInvalidModel, len(pairs))
	}
	res := make(Model, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: dict key %v is a %T, not a string", ErrInvalidModel, pairs[i], pairs[i])
		}
		res[key] = pairs[i+1]
	}
	return res, nil
}
