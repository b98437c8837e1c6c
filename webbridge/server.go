package webbridge

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BDNK1/flowlang/runtime"
	"github.com/BDNK1/flowlang/value"
)

// Module builds the std:web module's exported member map.
func Module(rt *runtime.Runtime) map[string]value.Value {
	return map[string]value.Value{
		"serve": value.Async(func(args []value.Value, actx value.AsyncContext) (value.Value, error) {
			return serveFn(rt, args)
		}),
	}
}

// serveFn registers an HttpServer handle and spawns a gin-based acceptor
// with graceful shutdown, following §4.4.2 and app.go's server lifecycle.
func serveFn(rt *runtime.Runtime, args []value.Value) (value.Value, error) {
	port := int(args[0].Number())
	handler := args[1]

	h := rt.RegisterHandle(runtime.KindHTTPServer, "http")
	prototype := ResponsePrototype()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.NoRoute(func(c *gin.Context) {
		dispatch(rt, handler, prototype, c)
	})

	srv := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: router}

	go func() {
		go func() {
			<-h.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// The acceptor failed to bind; unregister so the drain loop
			// doesn't wait forever on a server that never ran.
		}
		rt.UnregisterHandle(h.ID)
	}()

	return value.HandleValue(uint64(h.ID)), nil
}

// dispatch builds the request map, posts a web-callback request, awaits
// the reply, and writes the materialized HTTP response. This is the
// per-request bridge step named in §4.4.2.
func dispatch(rt *runtime.Runtime, handler value.Value, prototype *value.Relic, c *gin.Context) {
	rt.RecordWebRequest()
	reqMap := buildRequestMap(c)
	reply := rt.SendWebCallback(handler, []value.Value{reqMap, value.MapValue(prototype)})

	select {
	case result, ok := <-reply:
		if !ok {
			c.String(http.StatusInternalServerError, "handler reply channel closed")
			return
		}
		writeResponse(c, Materialize(result))
	case <-time.After(30 * time.Second):
		c.String(http.StatusInternalServerError, "handler timed out")
	}
}

func writeResponse(c *gin.Context, m Materialized) {
	for k, v := range m.Headers {
		c.Header(k, v)
	}
	ct := m.ContentType
	if ct == "" {
		ct = "text/plain"
	}
	c.Data(m.Status, ct, []byte(m.Body))
}

// buildRequestMap constructs the request map per §4.4.2's field list.
// query and cookies are intentionally empty maps — lazy fields scripts
// parse on demand via url.parseQuery / req.headers["cookie"].
func buildRequestMap(c *gin.Context) value.Value {
	headers := map[string]value.Value{}
	for k, vs := range c.Request.Header {
		if len(vs) > 0 {
			headers[strings.ToLower(k)] = value.Str(vs[0])
		}
	}

	var bodyStr string
	if c.Request.Body != nil {
		b, _ := io.ReadAll(c.Request.Body)
		bodyStr = string(b)
	}

	protocol := "http"
	if c.Request.TLS != nil {
		protocol = "https"
	}

	entries := map[string]value.Value{
		"method":   value.Str(c.Request.Method),
		"url":      value.Str(c.Request.URL.String()),
		"path":     value.Str(c.Request.URL.RequestURI()),
		"pathname": value.Str(c.Request.URL.Path),
		"query":    value.MapValue(value.NewRelic(map[string]value.Value{})),
		"headers":  value.MapValue(value.NewRelic(headers)),
		"cookies":  value.MapValue(value.NewRelic(map[string]value.Value{})),
		"body":     value.Str(bodyStr),
		"ip":       value.Str(c.ClientIP()),
		"host":     value.Str(c.Request.Host),
		"protocol": value.Str(protocol),
		"id":       value.Str(uuid.NewString()),
	}
	keys := []string{"method", "url", "path", "pathname", "query", "headers", "cookies", "body", "ip", "host", "protocol", "id"}
	return value.MapValue(value.NewRelicOrdered(keys, entries))
}
