package httpx

import (
	"github.com/valyala/fasthttp"

	"aino/pkg/pipeline"
)

// FastHTTPAdapter adapts a pipeline handler into a fasthttp.RequestHandler.
// Header wire order is preserved as fasthttp visits them.
func FastHTTPAdapter(h pipeline.Handler) fasthttp.RequestHandler {
	return func(fctx *fasthttp.RequestCtx) {
		var hdrs []pipeline.HeaderPair
		fctx.Request.Header.VisitAll(func(k, v []byte) {
			hdrs = append(hdrs, pipeline.HeaderPair{Name: string(k), Value: string(v)})
		})

		req := &pipeline.Request{
			Method:     string(fctx.Method()),
			Path:       string(fctx.Path()),
			Headers:    hdrs,
			RawQuery:   string(fctx.URI().QueryString()),
			Body:       append([]byte(nil), fctx.PostBody()...),
			RemoteAddr: fctx.RemoteAddr().String(),
			Raw:        fctx,
		}

		status, headers, respBody := run(h, req)
		for _, p := range headers {
			fctx.Response.Header.Add(p.Name, p.Value)
		}
		fctx.SetStatusCode(status)
		_, _ = fctx.Write(respBody)
	}
}
