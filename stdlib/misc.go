package stdlib

import (
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BDNK1/flowlang/value"
)

// The modules in this file are minimal, standard-library-only stubs. Their
// full implementations are out of scope per §1 — the evaluator only needs
// the load_module contract to resolve them without error; see DESIGN.md for
// why no pack dependency was wired into this sliver of each.

func mathModule() map[string]value.Value {
	unary := func(f func(float64) float64) value.Value {
		return value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 1 {
				return value.Number(0), nil
			}
			return value.Number(f(args[0].Number())), nil
		})
	}
	return map[string]value.Value{
		"abs":   unary(math.Abs),
		"floor": unary(math.Floor),
		"ceil":  unary(math.Ceil),
		"round": unary(math.Round),
		"sqrt":  unary(math.Sqrt),
		"max": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return value.Number(0), nil
			}
			m := args[0].Number()
			for _, a := range args[1:] {
				if a.Number() > m {
					m = a.Number()
				}
			}
			return value.Number(m), nil
		}),
		"min": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return value.Number(0), nil
			}
			m := args[0].Number()
			for _, a := range args[1:] {
				if a.Number() < m {
					m = a.Number()
				}
			}
			return value.Number(m), nil
		}),
		"pi": value.Number(math.Pi),
	}
}

func stringModule() map[string]value.Value {
	return map[string]value.Value{
		"upper": value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Str(strings.ToUpper(arg0(args))), nil
		}),
		"lower": value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Str(strings.ToLower(arg0(args))), nil
		}),
		"trim": value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Str(strings.TrimSpace(arg0(args))), nil
		}),
		"split": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 2 {
				return value.ArrayValue(value.NewArray(nil)), nil
			}
			parts := strings.Split(args[0].String(), args[1].String())
			items := make([]value.Value, len(parts))
			for i, p := range parts {
				items[i] = value.Str(p)
			}
			return value.ArrayValue(value.NewArray(items)), nil
		}),
		"contains": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 2 {
				return value.Bool(false), nil
			}
			return value.Bool(strings.Contains(args[0].String(), args[1].String())), nil
		}),
		"replace": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 3 {
				return value.Str(arg0(args)), nil
			}
			return value.Str(strings.ReplaceAll(args[0].String(), args[1].String(), args[2].String())), nil
		}),
	}
}

func arg0(args []value.Value) string {
	if len(args) == 0 {
		return ""
	}
	return args[0].String()
}

func arrayModule() map[string]value.Value {
	return map[string]value.Value{
		"sorted": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 1 || args[0].Kind() != value.KindArray {
				return value.ArrayValue(value.NewArray(nil)), nil
			}
			items := args[0].Array().Items()
			out := make([]float64, len(items))
			for i, it := range items {
				out[i] = it.Number()
			}
			sort.Float64s(out)
			vs := make([]value.Value, len(out))
			for i, n := range out {
				vs[i] = value.Number(n)
			}
			return value.ArrayValue(value.NewArray(vs)), nil
		}),
	}
}

func urlModule() map[string]value.Value {
	return map[string]value.Value{
		"parseQuery": value.Sync(func(args []value.Value) (value.Value, error) {
			raw := arg0(args)
			if idx := strings.IndexByte(raw, '?'); idx >= 0 {
				raw = raw[idx+1:]
			}
			q, err := url.ParseQuery(raw)
			if err != nil {
				return value.MapValue(value.NewRelic(nil)), nil
			}
			entries := make(map[string]value.Value, len(q))
			for k, vs := range q {
				if len(vs) > 0 {
					entries[k] = value.Str(vs[0])
				}
			}
			return value.MapValue(value.NewRelic(entries)), nil
		}),
	}
}

func timeModule() map[string]value.Value {
	return map[string]value.Value{
		"now": value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Now().UnixMilli())), nil
		}),
	}
}

func pathModule() map[string]value.Value {
	return map[string]value.Value{
		"join": value.Sync(func(args []value.Value) (value.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = value.ToDisplayString(a)
			}
			return value.Str(filepath.Join(parts...)), nil
		}),
		"base": value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Str(filepath.Base(arg0(args))), nil
		}),
		"ext": value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Str(filepath.Ext(arg0(args))), nil
		}),
	}
}

func processModule() map[string]value.Value {
	return map[string]value.Value{
		"exit": value.Sync(func(args []value.Value) (value.Value, error) {
			code := 0
			if len(args) > 0 {
				code = int(args[0].Number())
			}
			os.Exit(code)
			return value.Null(), nil
		}),
		"env": value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Str(os.Getenv(arg0(args))), nil
		}),
	}
}

func osModule() map[string]value.Value {
	return map[string]value.Value{
		"platform": value.Str("linux"),
	}
}

func cliModule() map[string]value.Value {
	return map[string]value.Value{
		"args": value.Sync(func(args []value.Value) (value.Value, error) {
			raw := os.Getenv("FLOWLANG_SCRIPT_ARGS")
			if raw == "" {
				return value.ArrayValue(value.NewArray(nil)), nil
			}
			parts := strings.Split(raw, "\x1f")
			items := make([]value.Value, len(parts))
			for i, p := range parts {
				items[i] = value.Str(p)
			}
			return value.ArrayValue(value.NewArray(items)), nil
		}),
	}
}

func fileModule() map[string]value.Value {
	return map[string]value.Value{
		"read": value.Sync(func(args []value.Value) (value.Value, error) {
			data, err := os.ReadFile(arg0(args))
			if err != nil {
				return value.Null(), err
			}
			return value.Str(string(data)), nil
		}),
		"write": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 2 {
				return value.Bool(false), nil
			}
			err := os.WriteFile(args[0].String(), []byte(args[1].String()), 0o644)
			return value.Bool(err == nil), err
		}),
	}
}

func colorModule() map[string]value.Value {
	// No third-party terminal-color library is grounded anywhere in the
	// retrieval pack's full source — see DESIGN.md. ANSI codes here are
	// the plain, undecorated standard-library equivalent.
	wrap := func(code string) value.Value {
		return value.Sync(func(args []value.Value) (value.Value, error) {
			return value.Str("\x1b[" + code + "m" + arg0(args) + "\x1b[0m"), nil
		})
	}
	return map[string]value.Value{
		"red":   wrap("31"),
		"green": wrap("32"),
		"yellow": wrap("33"),
	}
}

func streamModule() map[string]value.Value {
	return map[string]value.Value{}
}
