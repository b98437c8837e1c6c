package stdlib

import (
	gojson "github.com/goccy/go-json"

	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// jsonModule wraps goccy/go-json, the codec already promoted to a direct
// dependency for manifest decoding and the AST cache, reused here for
// script-level json.encode/json.decode.
func jsonModule() map[string]value.Value {
	return map[string]value.Value{
		"encode": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 1 {
				return value.Str(""), nil
			}
			b, err := gojson.Marshal(value.ToGo(args[0]))
			if err != nil {
				return value.Null(), ferr.New(ferr.Glitch, err.Error(), 0, 0)
			}
			return value.Str(string(b)), nil
		}),
		"decode": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 1 {
				return value.Null(), ferr.Runtimef(0, 0, "json.decode requires a string argument")
			}
			var out any
			if err := gojson.Unmarshal([]byte(args[0].String()), &out); err != nil {
				return value.Null(), ferr.New(ferr.Glitch, err.Error(), 0, 0)
			}
			return value.FromGo(out), nil
		}),
	}
}
