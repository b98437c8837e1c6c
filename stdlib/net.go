package stdlib

import (
	"github.com/go-resty/resty/v2"

	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// netModule wraps go-resty/resty for outbound HTTP calls from scripts,
// grounded directly on the pack's plugins/http module, which wraps the
// identical client for the same purpose.
func netModule() map[string]value.Value {
	client := resty.New()

	doRequest := func(method string, args []value.Value) (value.Value, error) {
		if len(args) < 1 || args[0].Kind() != value.KindString {
			return value.Null(), ferr.Runtimef(0, 0, "net.%s requires a url string", method)
		}
		url := args[0].String()
		req := client.R()
		if len(args) > 1 && args[1].Kind() == value.KindString {
			req.SetBody(args[1].String())
		}
		resp, err := req.Execute(method, url)
		if err != nil {
			return value.Null(), ferr.New(ferr.Rift, err.Error(), 0, 0)
		}
		entries := map[string]value.Value{
			"status": value.Number(float64(resp.StatusCode())),
			"body":   value.Str(string(resp.Body())),
		}
		return value.MapValue(value.NewRelicOrdered([]string{"status", "body"}, entries)), nil
	}

	return map[string]value.Value{
		"get": value.Sync(func(args []value.Value) (value.Value, error) {
			return doRequest("GET", args)
		}),
		"post": value.Sync(func(args []value.Value) (value.Value, error) {
			return doRequest("POST", args)
		}),
		"put": value.Sync(func(args []value.Value) (value.Value, error) {
			return doRequest("PUT", args)
		}),
		"delete": value.Sync(func(args []value.Value) (value.Value, error) {
			return doRequest("DELETE", args)
		}),
	}
}
