package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a new router with the default handlers
// PanicHandler
// NotFoundHandler
// MethodNotAllowed
// GlobalOPTIONS (answers CORS preflight requests)
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = NotFoundHandler
	r.HandleOPTIONS = true
	r.GlobalOPTIONS = func(ctx *RequestCtx) {
		ctx.SetStatusCode(StatusNoContent)
	}
	r.HandleMethodNotAllowed = true
	return r
}

// NotFoundHandler is the default 404 handler, it answers with the same
// JSON envelope the API handlers use.
func NotFoundHandler(ctx *RequestCtx) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatusCode(StatusNotFound)
	ctx.SetBodyString(`{"success":false,"error":"` + StatusText(StatusNotFound) + `"}`)
}
