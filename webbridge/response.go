// Package webbridge implements the HTTP request dispatch bridge between a
// multi-threaded gin acceptor and the single-threaded evaluator: request
// map construction, the response-prototype helper functions, and response
// materialization, grounded on the teacher's http_handler.go and
// container.go gin wiring, generalized from one-route-per-flow to
// one-route-per-web.serve() call.
package webbridge

import (
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/BDNK1/flowlang/value"
)

// Materialized is the (status, body, content-type, headers) tuple response
// materialization produces — a pure function of a handler's return value,
// per §4.4.3 and the testable property that it must remain so.
type Materialized struct {
	Status      int
	Body        string
	ContentType string
	Headers     map[string]string
}

// Materialize implements §4.4.3's response rules, first match wins.
func Materialize(v value.Value) Materialized {
	if v.Kind() == value.KindMap {
		if statusV, ok := v.Map().Get("status"); ok && statusV.Kind() == value.KindNumber {
			bodyStr := ""
			if bodyV, ok := v.Map().Get("body"); ok {
				bodyStr = value.ToDisplayString(bodyV)
			}
			ct := ""
			if ctV, ok := v.Map().Get("contentType"); ok {
				ct = value.ToDisplayString(ctV)
			} else {
				ct = sniffContentType(bodyStr)
			}
			headers := map[string]string{}
			if hV, ok := v.Map().Get("headers"); ok && hV.Kind() == value.KindMap {
				for _, k := range hV.Map().Keys() {
					hv, _ := hV.Map().Get(k)
					headers[k] = value.ToDisplayString(hv)
				}
			}
			return Materialized{Status: int(statusV.Number()), Body: bodyStr, ContentType: ct, Headers: headers}
		}
	}

	switch v.Kind() {
	case value.KindString:
		return Materialized{Status: 200, Body: v.String(), ContentType: "text/plain"}
	case value.KindNumber:
		return Materialized{Status: int(v.Number()), Body: "", ContentType: "text/plain"}
	case value.KindNull:
		return Materialized{Status: 204, Body: "", ContentType: "text/plain"}
	default:
		s := value.ToDisplayString(v)
		return Materialized{Status: 200, Body: s, ContentType: sniffContentType(s)}
	}
}

// sniffContentType inspects the body's first non-whitespace character.
func sniffContentType(body string) string {
	trimmed := strings.TrimLeft(body, " \t\r\n")
	if trimmed == "" {
		return "text/plain"
	}
	switch trimmed[0] {
	case '{', '[':
		return "application/json"
	case '<':
		return "text/html"
	default:
		return "text/plain"
	}
}

var extMime = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".txt":  "text/plain",
	".pdf":  "application/pdf",
}

// ResponsePrototype builds the helper-function map exposed to handlers as
// the second positional argument, built once per server and reused
// (cloned by reference-counting, not rebuilt) per request — see the Design
// Notes' response-prototype note.
func ResponsePrototype() *value.Relic {
	helpers := map[string]value.Value{
		"json": value.Sync(func(args []value.Value) (value.Value, error) {
			v := firstArg(args)
			return statusBody(200, jsonEncode(v), "application/json"), nil
		}),
		"html": value.Sync(func(args []value.Value) (value.Value, error) {
			return statusBody(200, value.ToDisplayString(firstArg(args)), "text/html"), nil
		}),
		"text": value.Sync(func(args []value.Value) (value.Value, error) {
			return statusBody(200, value.ToDisplayString(firstArg(args)), "text/plain"), nil
		}),
		"status": value.Sync(func(args []value.Value) (value.Value, error) {
			code := 200
			if len(args) > 0 {
				code = int(args[0].Number())
			}
			body := ""
			if len(args) > 1 {
				body = value.ToDisplayString(args[1])
			}
			return statusBody(code, body, sniffContentType(body)), nil
		}),
		"redirect": value.Sync(func(args []value.Value) (value.Value, error) {
			loc := value.ToDisplayString(firstArg(args))
			m := value.NewRelicOrdered(
				[]string{"status", "body", "headers"},
				map[string]value.Value{
					"status": value.Number(302),
					"body":   value.Str(""),
					"headers": value.MapValue(value.NewRelic(map[string]value.Value{
						"Location": value.Str(loc),
					})),
				},
			)
			return value.MapValue(m), nil
		}),
		"notFound":     statusMsgFn(404),
		"badRequest":   statusMsgFn(400),
		"serverError":  statusMsgFn(500),
		"ok":           statusMsgFn(200),
		"unauthorized": statusMsgFn(401),
		"forbidden":    statusMsgFn(403),
		"noContent": value.Sync(func(args []value.Value) (value.Value, error) {
			return statusBody(204, "", "text/plain"), nil
		}),
		"created": value.Sync(func(args []value.Value) (value.Value, error) {
			v := firstArg(args)
			if v.Kind() == value.KindArray || v.Kind() == value.KindMap {
				return statusBody(201, jsonEncode(v), "application/json"), nil
			}
			return statusBody(201, value.ToDisplayString(v), "text/plain"), nil
		}),
		"send": value.Sync(func(args []value.Value) (value.Value, error) {
			v := firstArg(args)
			m := Materialize(v)
			return statusBody(m.Status, m.Body, m.ContentType), nil
		}),
		"file": value.Sync(func(args []value.Value) (value.Value, error) {
			path := value.ToDisplayString(firstArg(args))
			data, err := os.ReadFile(path)
			if err != nil {
				return statusBody(404, "not found", "text/plain"), nil
			}
			ct := extMime[strings.ToLower(filepath.Ext(path))]
			if ct == "" {
				ct = "application/octet-stream"
			}
			m := value.NewRelicOrdered(
				[]string{"status", "body", "contentType", "headers"},
				map[string]value.Value{
					"status":      value.Number(200),
					"body":        value.Str(string(data)),
					"contentType": value.Str(ct),
					"headers": value.MapValue(value.NewRelic(map[string]value.Value{
						"Content-Disposition": value.Str("inline; filename=\"" + filepath.Base(path) + "\""),
					})),
				},
			)
			return value.MapValue(m), nil
		}),
		"header": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 2 {
				return value.Null(), nil
			}
			m := value.NewRelicOrdered([]string{"headers"}, map[string]value.Value{
				"headers": value.MapValue(value.NewRelic(map[string]value.Value{
					value.ToDisplayString(args[0]): value.Str(value.ToDisplayString(args[1])),
				})),
			})
			return value.MapValue(m), nil
		}),
	}
	return value.NewRelic(helpers)
}

// ServerErrorResponse builds the Materialize-shaped map a 500 response
// comes from, for callers (the drain loop's web dispatch) that need to
// reply with an error status rather than let a bare null fall through
// Materialize's null-case rule to 204. Per §7: "A handler that panics
// returns a 500 from the web bridge."
func ServerErrorResponse(msg string) value.Value {
	return statusBody(500, msg, "text/plain")
}

func statusMsgFn(code int) value.Value {
	return value.Sync(func(args []value.Value) (value.Value, error) {
		msg := ""
		if len(args) > 0 {
			msg = value.ToDisplayString(args[0])
		}
		return statusBody(code, msg, sniffContentType(msg)), nil
	})
}

func statusBody(code int, body, ct string) value.Value {
	m := value.NewRelicOrdered(
		[]string{"status", "body", "contentType"},
		map[string]value.Value{
			"status":      value.Number(float64(code)),
			"body":        value.Str(body),
			"contentType": value.Str(ct),
		},
	)
	return value.MapValue(m)
}

func firstArg(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Null()
	}
	return args[0]
}

// jsonEncode renders a container Value as JSON text for response helpers
// that promise JSON encoding (json(), created() on a container), reusing the
// same goccy/go-json codec the json stdlib module encodes with rather than
// hand-rolling a second serializer.
func jsonEncode(v value.Value) string {
	b, err := gojson.Marshal(value.ToGo(v))
	if err != nil {
		return "null"
	}
	return string(b)
}
