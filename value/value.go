// Package value defines the dynamically-typed runtime value that flows
// through the evaluator: numbers, strings, booleans, arrays, maps, null,
// user functions, and the native callables the standard library and host
// bridges expose to scripts.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags a Value's variant.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindArray
	KindMap
	KindNull
	KindUserFunction
	KindSyncNative
	KindAsyncNative
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindNull:
		return "null"
	case KindUserFunction:
		return "function"
	case KindSyncNative:
		return "function"
	case KindAsyncNative:
		return "function"
	case KindHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// Value is the tagged union every evaluated expression produces. Container
// payloads (Array, Map) are reference-counted via Go's garbage collector and
// are never mutated after construction — mutating methods return new
// instances so every existing reference keeps observing the original.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	arr  *Array
	m    *Relic
	fn   *UserFunction
	sync SyncNative
	async AsyncNative
	handle uint64
}

// Param describes one parameter of a UserFunction: its name and an optional
// structural type tag (empty string means untyped).
type Param struct {
	Name string
	Type string
}

// UserFunction is a closure: the parameter list, optional return type tag,
// the body statements (opaque to this package — the interpreter supplies
// the concrete statement type via the Body field as an any so that value
// has no import-cycle dependency on the AST/interpreter packages), the
// captured environment (also an any for the same reason), and whether the
// function is a "ritual" (async, may suspend) rather than a "spell".
type UserFunction struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       any
	Closure    any
	Async      bool
}

// SyncNative is an opaque Go-backed callable invoked synchronously.
type SyncNative func(args []Value) (Value, error)

// AsyncContext is the subset of runtime capability an AsyncNative needs:
// registering handles or posting callback requests. It is satisfied by
// *runtime.Runtime without this package importing runtime.
type AsyncContext interface {
	Context() any
}

// AsyncNative is an opaque Go-backed callable invoked asynchronously; it may
// register handles or submit callback requests through the supplied
// AsyncContext.
type AsyncNative func(args []Value, actx AsyncContext) (Value, error)

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Str(s string) Value     { return Value{kind: KindString, str: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Null() Value            { return Value{kind: KindNull} }

func Func(fn *UserFunction) Value { return Value{kind: KindUserFunction, fn: fn} }
func Sync(fn SyncNative) Value    { return Value{kind: KindSyncNative, sync: fn} }
func Async(fn AsyncNative) Value  { return Value{kind: KindAsyncNative, async: fn} }
func HandleValue(id uint64) Value { return Value{kind: KindHandle, handle: id} }

func ArrayValue(a *Array) Value { return Value{kind: KindArray, arr: a} }
func MapValue(m *Relic) Value   { return Value{kind: KindMap, m: m} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) Number() float64  { return v.num }
func (v Value) String() string   { return v.str }
func (v Value) Bool() bool       { return v.b }
func (v Value) Array() *Array    { return v.arr }
func (v Value) Map() *Relic      { return v.m }
func (v Value) UserFunc() *UserFunction { return v.fn }
func (v Value) SyncFn() SyncNative      { return v.sync }
func (v Value) AsyncFn() AsyncNative    { return v.async }
func (v Value) HandleID() uint64        { return v.handle }

func (v Value) IsCallable() bool {
	return v.kind == KindUserFunction || v.kind == KindSyncNative || v.kind == KindAsyncNative
}

// Truthy implements the language's truthiness rule used by both! / either!
// and by if/until conditions: null and false are falsy, zero is falsy, the
// empty string is falsy, empty containers are falsy, everything else is
// truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	case KindArray:
		return v.arr.Len() > 0
	case KindMap:
		return v.m.Len() > 0
	default:
		return true
	}
}

// Equal implements the language's is~ rule: value equality on number,
// string, bool, and null; every other pairing (including any container
// pairing, even two empty arrays) is unequal. This asymmetry is intentional
// — see the Design Notes on container equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindBool:
		return a.b == b.b
	case KindNull:
		return true
	default:
		return false
	}
}

// ToDisplayString renders a Value the way string concatenation and
// implicit to-string coercion do.
func ToDisplayString(v Value) string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNull:
		return "null"
	case KindArray:
		parts := make([]string, v.arr.Len())
		for i, e := range v.arr.items {
			parts[i] = ToDisplayString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, 0, v.m.Len())
		for _, k := range v.m.Keys() {
			val, _ := v.m.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, ToDisplayString(val)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindUserFunction:
		return "<function " + v.fn.Name + ">"
	case KindSyncNative, KindAsyncNative:
		return "<native function>"
	case KindHandle:
		return fmt.Sprintf("<handle #%d>", v.handle)
	default:
		return "<unknown>"
	}
}

func formatNumber(n float64) string {
	if math.Trunc(n) == n && !math.IsInf(n, 0) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// CheckType performs a structural, recursive type-tag check used for typed
// let/seal bindings, parameter binding, and return-value checks. "any"
// always passes; array-of-T and map-of-K-V are recursive.
func CheckType(v Value, tag string) bool {
	if tag == "" || tag == "any" {
		return true
	}
	switch tag {
	case "number":
		return v.kind == KindNumber
	case "string":
		return v.kind == KindString
	case "bool":
		return v.kind == KindBool
	case "void":
		return v.kind == KindNull
	case "function":
		return v.IsCallable()
	}
	if strings.HasPrefix(tag, "array-of-") {
		if v.kind != KindArray {
			return false
		}
		inner := strings.TrimPrefix(tag, "array-of-")
		for _, e := range v.arr.items {
			if !CheckType(e, inner) {
				return false
			}
		}
		return true
	}
	if strings.HasPrefix(tag, "map-of-") {
		if v.kind != KindMap {
			return false
		}
		rest := strings.TrimPrefix(tag, "map-of-")
		idx := strings.Index(rest, "-")
		if idx < 0 {
			return false
		}
		valTag := rest[idx+1:]
		for _, k := range v.m.Keys() {
			val, _ := v.m.Get(k)
			if !CheckType(val, valTag) {
				return false
			}
		}
		return true
	}
	return false
}
