package pipeline

import (
	"errors"
	"fmt"
)

// Request is the transport-neutral inbound request handed to the pipeline
// by a host adapter (see pkg/httpx). Header order is preserved as received.
type Request struct {
	Method     string
	Path       string
	Headers    []HeaderPair
	RawQuery   string
	Body       []byte
	RemoteAddr string
	// Raw holds the underlying transport-specific request object
	// (e.g. *http.Request or *fasthttp.RequestCtx) for escape hatches.
	Raw interface{}
}

// HeaderPair is a single name/value header entry. Response headers are kept
// as an ordered slice of these; appending never deduplicates, so repeated
// Set-Cookie entries survive.
type HeaderPair struct {
	Name  string
	Value string
}

// Context is the per-request envelope threaded through the middleware
// pipeline. Well-known fields are populated progressively: the host adapter
// sets Request, the normalizer fills Method/Path/Headers/Query/Body/Cookies,
// the router fills PathParams and RouteMiddleware, the session layer owns
// the Session* fields. Bag carries application-specific values.
type Context struct {
	Request *Request

	Method  string
	Path    []string
	Headers map[string][]string
	Cookies map[string]string
	Query   map[string]interface{}
	Body    interface{}

	PathParams map[string]string
	Params     map[string]interface{}

	// RouteMiddleware is the matched route's middleware, pending execution.
	// Routes holds the bound route table; owned by pkg/router.
	RouteMiddleware Handler
	Routes          interface{}

	// SessionConfig is owned by pkg/session and set at app wiring time.
	SessionConfig  interface{}
	Session        map[string]interface{}
	SessionDecoded bool
	SessionUpdated bool
	Flash          map[string]string

	Halt bool

	Status      int
	RespHeaders []HeaderPair
	RespBody    []byte

	// BaseURL is scheme://host[:port] used for absolute reverse URLs.
	BaseURL string

	Bag map[string]interface{}
}

// NewContext returns a context wrapping the given inbound request.
func NewContext(req *Request) *Context {
	return &Context{Request: req, Bag: map[string]interface{}{}}
}

// AddHeader appends a response header pair, preserving order and duplicates.
func (c *Context) AddHeader(name, value string) {
	c.RespHeaders = append(c.RespHeaders, HeaderPair{Name: name, Value: value})
}

// Respond sets the full response triple on the context.
func (c *Context) Respond(status int, contentType string, body string) *Context {
	c.Status = status
	c.AddHeader("Content-Type", contentType)
	c.RespBody = []byte(body)
	return c
}

// ErrIncompleteResponse is returned by Response when the pipeline finished
// without producing a full status/headers/body triple. Hosts translate it
// into a 500.
var ErrIncompleteResponse = errors.New("pipeline finished with incomplete response")

// Response returns the final response triple, or ErrIncompleteResponse if
// any of the three parts is missing.
func (c *Context) Response() (int, []HeaderPair, []byte, error) {
	if c.Status == 0 || c.RespHeaders == nil || c.RespBody == nil {
		return 0, nil, nil, fmt.Errorf("%w: status=%d headers=%t body=%t",
			ErrIncompleteResponse, c.Status, c.RespHeaders != nil, c.RespBody != nil)
	}
	return c.Status, c.RespHeaders, c.RespBody, nil
}
