package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNavigation is matched by every NavigationError via errors.Is.
var ErrNavigation = errors.New("document navigation failed")

// NavigationError reports where a traversal left the expected document shape.
type NavigationError struct {
	Path    []string // segments walked so far, including the failing one
	Segment string
	Reason  string
}

func (e *NavigationError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("navigate <root>: %s", e.Reason)
	}
	return fmt.Sprintf("navigate %s: %s", strings.Join(e.Path, "."), e.Reason)
}

func (e *NavigationError) Is(target error) bool {
	return target == ErrNavigation
}

// Decode reads a single JSON value from r. Numbers are kept as json.Number so
// that nothing is lost before a transformer decides how to parse them.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// Lookup walks path through nested objects and returns the value found at
// the end of it.
func Lookup(v any, path ...string) (any, error) {
	cur := v
	for i, seg := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, &NavigationError{
				Path:    path[:i+1],
				Segment: seg,
				Reason:  fmt.Sprintf("expected object, got %s", kindOf(cur)),
			}
		}
		next, ok := obj[seg]
		if !ok {
			return nil, &NavigationError{
				Path:    path[:i+1],
				Segment: seg,
				Reason:  fmt.Sprintf("missing key %q", seg),
			}
		}
		cur = next
	}
	return cur, nil
}

// Object looks up path and requires the result to be an object.
func Object(v any, path ...string) (map[string]any, error) {
	found, err := Lookup(v, path...)
	if err != nil {
		return nil, err
	}
	obj, ok := found.(map[string]any)
	if !ok {
		return nil, mismatch(path, "object", found)
	}
	return obj, nil
}

// String looks up path and requires the result to be a string.
func String(v any, path ...string) (string, error) {
	found, err := Lookup(v, path...)
	if err != nil {
		return "", err
	}
	s, ok := found.(string)
	if !ok {
		return "", mismatch(path, "string", found)
	}
	return s, nil
}

// Sequence looks up path and coerces the result with AsSequence.
func Sequence(v any, path ...string) ([]any, error) {
	found, err := Lookup(v, path...)
	if err != nil {
		return nil, err
	}
	seq, err := AsSequence(found)
	if err != nil {
		var nerr *NavigationError
		if errors.As(err, &nerr) {
			nerr.Path = path
			if len(path) > 0 {
				nerr.Segment = path[len(path)-1]
			}
		}
		return nil, err
	}
	return seq, nil
}

// AsSequence normalizes a node the upstream API emits as a lone object when
// there is one item and as an array when there are several. Arrays are
// returned unchanged, an object becomes a one-element slice, and any other
// value is an error.
func AsSequence(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		return []any{t}, nil
	default:
		return nil, &NavigationError{Reason: fmt.Sprintf("expected array or object, got %s", kindOf(v))}
	}
}

func mismatch(path []string, want string, got any) *NavigationError {
	seg := ""
	if len(path) > 0 {
		seg = path[len(path)-1]
	}
	return &NavigationError{
		Path:    path,
		Segment: seg,
		Reason:  fmt.Sprintf("expected %s, got %s", want, kindOf(got)),
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
