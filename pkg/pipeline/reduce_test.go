package pipeline

import (
	"errors"
	"testing"
)

func mark(name string) Middleware {
	return func(ctx *Context) *Context {
		ctx.Bag[name] = true
		return ctx
	}
}

func halting(ctx *Context) *Context {
	ctx.Halt = true
	return ctx
}

func TestReduceOrder(t *testing.T) {
	ctx := NewContext(&Request{})
	order := []string{}
	step := func(name string) Middleware {
		return func(ctx *Context) *Context {
			order = append(order, name)
			return ctx
		}
	}
	Reduce(ctx, step("a"), step("b"), step("c"))
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("expected sequential a,b,c; got %v", order)
	}
}

func TestReduceHaltSkipsRest(t *testing.T) {
	ctx := NewContext(&Request{})
	Reduce(ctx, Middleware(halting), mark("b"), mark("c"))
	if _, ok := ctx.Bag["b"]; ok {
		t.Fatalf("middleware after halt should not run")
	}
	if _, ok := ctx.Bag["c"]; ok {
		t.Fatalf("middleware after halt should not run")
	}
}

func TestReduceIgnoreHaltStillRuns(t *testing.T) {
	ctx := NewContext(&Request{})
	Reduce(ctx, Middleware(halting), mark("b"), IgnoreHalt(mark("c")))
	if _, ok := ctx.Bag["b"]; ok {
		t.Fatalf("plain middleware must be skipped after halt")
	}
	if _, ok := ctx.Bag["c"]; !ok {
		t.Fatalf("IgnoreHalt middleware must run after halt")
	}
}

func TestReduceNestedChainFlattening(t *testing.T) {
	flat := NewContext(&Request{})
	Reduce(flat, mark("a"), mark("b"), mark("c"))

	nested := NewContext(&Request{})
	Reduce(nested, mark("a"), Chain{mark("b"), Chain{mark("c")}})

	for _, k := range []string{"a", "b", "c"} {
		if flat.Bag[k] != nested.Bag[k] {
			t.Fatalf("nested reduction diverged from flat at %q", k)
		}
	}
}

func TestReduceIgnoreHaltInsideNestedChain(t *testing.T) {
	ctx := NewContext(&Request{})
	Reduce(ctx, Middleware(halting), Chain{mark("b"), IgnoreHalt(mark("c"))})
	if _, ok := ctx.Bag["b"]; ok {
		t.Fatalf("plain middleware inside nested chain must be skipped after halt")
	}
	if _, ok := ctx.Bag["c"]; !ok {
		t.Fatalf("IgnoreHalt inside nested chain must run after halt")
	}
}

func TestResponseIncomplete(t *testing.T) {
	ctx := NewContext(&Request{})
	if _, _, _, err := ctx.Response(); !errors.Is(err, ErrIncompleteResponse) {
		t.Fatalf("expected ErrIncompleteResponse, got %v", err)
	}
	ctx.Respond(200, "text/plain", "ok")
	st, hs, body, err := ctx.Response()
	if err != nil {
		t.Fatalf("complete response reported error: %v", err)
	}
	if st != 200 || len(hs) != 1 || string(body) != "ok" {
		t.Fatalf("unexpected triple: %d %v %q", st, hs, body)
	}
}

func TestAddHeaderKeepsDuplicates(t *testing.T) {
	ctx := NewContext(&Request{})
	ctx.AddHeader("Set-Cookie", "a=1")
	ctx.AddHeader("Set-Cookie", "b=2")
	if len(ctx.RespHeaders) != 2 {
		t.Fatalf("expected both Set-Cookie headers, got %v", ctx.RespHeaders)
	}
	if ctx.RespHeaders[0].Value != "a=1" || ctx.RespHeaders[1].Value != "b=2" {
		t.Fatalf("header order not preserved: %v", ctx.RespHeaders)
	}
}
