// Package httpx binds host HTTP servers to the middleware pipeline. Both
// adapters build the transport-neutral request shape, run the pipeline, and
// write back the response triple. The outer boundary lives here: panics
// from application middleware and incomplete response triples become 500s.
package httpx

import (
	"runtime/debug"

	"aino/pkg/logger"
	"aino/pkg/pipeline"
)

// run executes the pipeline over one request and returns the response
// triple, translating panics and contract violations into a generic 500.
func run(h pipeline.Handler, req *pipeline.Request) (status int, headers []pipeline.HeaderPair, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline_panic", "panic", r, "path", req.Path, "stack", string(debug.Stack()))
			status, headers, body = 500, []pipeline.HeaderPair{{Name: "Content-Type", Value: "text/plain"}}, []byte("Internal error")
		}
	}()

	ctx := pipeline.Reduce(pipeline.NewContext(req), h)
	st, hs, b, err := ctx.Response()
	if err != nil {
		logger.Error("pipeline_incomplete_response", "path", req.Path, "error", err)
		return 500, []pipeline.HeaderPair{{Name: "Content-Type", Value: "text/plain"}}, []byte("Internal error")
	}
	return st, hs, b
}
