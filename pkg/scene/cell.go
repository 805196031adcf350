package scene

import (
	"fmt"
	"reflect"
	"sort"
)

// UnsetValue marks an attribute key as absent.
//
// A patch holding Unset for a key deletes that key, and a snapshot holding it
// records that the key did not exist. It is never stored on a cell.
type UnsetValue struct{}

// String implements fmt.Stringer
func (UnsetValue) String() string { return "<unset>" }

// Unset is the sentinel attribute value for "key absent"
var Unset = UnsetValue{}

// IsUnset reports whether v is the Unset sentinel
func IsUnset(v any) bool {
	_, ok := v.(UnsetValue)
	return ok
}

// Attributes is the open-ended attribute bag of a cell.
//
// Values are whatever the host stores there (numbers, strings, nested maps and
// slices decoded from YAML or JSON). The scene never interprets them beyond
// the connector endpoint keys.
type Attributes map[string]any

// Keys returns the attribute keys in sorted order
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns the value at key if it is a string
func (a Attributes) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Clone returns a deep copy of the attributes
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	copied := make(Attributes, len(a))
	for k, v := range a {
		copied[k] = cloneValue(v)
	}
	return copied
}

// Restrict returns a deep copy holding only keys.
// Keys missing from a are recorded as Unset.
func (a Attributes) Restrict(keys []string) Attributes {
	restricted := make(Attributes, len(keys))
	for _, k := range keys {
		if v, ok := a[k]; ok {
			restricted[k] = cloneValue(v)
		} else {
			restricted[k] = Unset
		}
	}
	return restricted
}

// cloneValue deep copies v. The container types produced by the YAML and
// JSON decoders take a fast path; any other slice, map or array is copied
// through reflection. Scalars, pointers and structs are returned as-is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case Attributes:
		return val.Clone()
	case map[string]any:
		if val == nil {
			return val
		}
		copied := make(map[string]any, len(val))
		for k, inner := range val {
			copied[k] = cloneValue(inner)
		}
		return copied
	case []any:
		if val == nil {
			return val
		}
		copied := make([]any, len(val))
		for i, inner := range val {
			copied[i] = cloneValue(inner)
		}
		return copied
	case []string:
		if val == nil {
			return val
		}
		copied := make([]string, len(val))
		copy(copied, val)
		return copied
	case nil, string, bool, int, int64, float64:
		return v
	default:
		return cloneReflect(reflect.ValueOf(v)).Interface()
	}
}

func cloneReflect(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		copied := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			copied.Index(i).Set(cloneElem(rv.Index(i)))
		}
		return copied
	case reflect.Array:
		copied := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			copied.Index(i).Set(cloneElem(rv.Index(i)))
		}
		return copied
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		copied := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			copied.SetMapIndex(iter.Key(), cloneElem(iter.Value()))
		}
		return copied
	default:
		return rv
	}
}

// cloneElem copies one element of a container, keeping its static type.
func cloneElem(rv reflect.Value) reflect.Value {
	out := reflect.New(rv.Type()).Elem()
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return out
		}
		out.Set(reflect.ValueOf(cloneValue(rv.Interface())))
		return out
	}
	out.Set(cloneReflect(rv))
	return out
}

// Cell is one visual entity of the scene
type Cell struct {
	ID         string     `json:"id" yaml:"id"`
	Kind       Kind       `json:"kind" yaml:"kind"`
	Attributes Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// NewNode creates a node cell
func NewNode(id string, attrs Attributes) Cell {
	return Cell{ID: id, Kind: KindNode, Attributes: attrs}
}

// NewConnector creates a connector cell linking source to target
func NewConnector(id, source, target string, attrs Attributes) Cell {
	merged := attrs.Clone()
	if merged == nil {
		merged = make(Attributes, 2)
	}
	merged[AttrSource] = source
	merged[AttrTarget] = target
	return Cell{ID: id, Kind: KindConnector, Attributes: merged}
}

// Clone returns a deep copy of the cell
func (c Cell) Clone() Cell {
	return Cell{
		ID:         c.ID,
		Kind:       c.Kind,
		Attributes: c.Attributes.Clone(),
	}
}

// Validate checks the structural invariants of a cell
func (c Cell) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty cell ID", ErrInvalidCell)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: cell %s has unknown kind %q", ErrInvalidCell, c.ID, c.Kind)
	}
	for k, v := range c.Attributes {
		if IsUnset(v) {
			return fmt.Errorf("%w: cell %s stores unset marker at %q", ErrInvalidCell, c.ID, k)
		}
	}
	return nil
}

// Endpoints returns the source and target IDs of a connector
func (c Cell) Endpoints() (source, target string) {
	return c.Attributes.String(AttrSource), c.Attributes.String(AttrTarget)
}

// Touches reports whether a connector is attached to the cell with the given ID
func (c Cell) Touches(id string) bool {
	if c.Kind != KindConnector {
		return false
	}
	source, target := c.Endpoints()
	return source == id || target == id
}
