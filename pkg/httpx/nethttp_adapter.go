package httpx

import (
	"io"
	"net/http"

	"aino/pkg/pipeline"
)

// NetHTTPAdapter adapts a pipeline handler into a standard net/http handler.
func NetHTTPAdapter(h pipeline.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "cannot read body", http.StatusBadRequest)
			return
		}
		_ = r.Body.Close()

		// net/http stores headers in a map, so cross-name order is not
		// preserved; per-name value order is.
		var hdrs []pipeline.HeaderPair
		for k, vs := range r.Header {
			for _, v := range vs {
				hdrs = append(hdrs, pipeline.HeaderPair{Name: k, Value: v})
			}
		}

		req := &pipeline.Request{
			Method:     r.Method,
			Path:       r.URL.Path,
			Headers:    hdrs,
			RawQuery:   r.URL.RawQuery,
			Body:       body,
			RemoteAddr: r.RemoteAddr,
			Raw:        r,
		}

		status, headers, respBody := run(h, req)
		for _, p := range headers {
			w.Header().Add(p.Name, p.Value)
		}
		w.WriteHeader(status)
		_, _ = w.Write(respBody)
	})
}
