// Package api assembles the HTTP surface: read endpoints under /api/v1, the
// webhook under /api, and process meta endpoints at the root
package api

import (
	stdhttp "net/http"

	"inkwell/internal/core/version"
	phttp "inkwell/internal/platform/net/http"
	"inkwell/internal/platform/net/middleware"

	contentsvc "inkwell/internal/services/content"
	"inkwell/internal/services/revalidate"
)

// Options are the API options
type Options struct {
	Content    *contentsvc.Service
	Revalidate *revalidate.Service

	// AllowedOrigins narrows CORS to the public site; empty allows any origin
	AllowedOrigins []string
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	r.Use(middleware.CommonStack(middleware.CORSOptions{AllowedOrigins: opt.AllowedOrigins})...)

	r.Get("/version", phttp.Handle(func(_ *stdhttp.Request) phttp.Response {
		return phttp.OK(version.Info())
	}))

	r.Route("/api", func(api phttp.Router) {
		revalidate.Register(api, opt.Revalidate)
		api.Route("/v1", func(v1 phttp.Router) {
			contentsvc.Register(v1, opt.Content)
		})
	})
}
