package content

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	perr "inkwell/internal/platform/errors"
	phttp "inkwell/internal/platform/net/http"
)

// Register mounts the read endpoints on the given router
func Register(r phttp.Router, s *Service) {
	h := &handlers{svc: s}
	r.Get("/posts", phttp.Handle(h.posts))
	r.Get("/posts/{year}/{month}/{day}/{slug}", phttp.Handle(h.post))
	r.Get("/views", phttp.Handle(h.views))
	r.Get("/views/{number}", phttp.Handle(h.view))
	r.Get("/comments/{number}", phttp.Handle(h.comments))
	r.Get("/now", phttp.Handle(h.now))
}

type handlers struct{ svc *Service }

// fail maps a service error to a response. Server-class failures in production
// get a generic message so upstream diagnostics never reach readers
func (h *handlers) fail(err error) phttp.Response {
	if h.svc.production && perr.HTTPStatus(err) >= 500 {
		return phttp.Error(perr.Unavailablef("service unavailable, check back soon"))
	}
	return phttp.Error(err)
}

func (h *handlers) posts(r *stdhttp.Request) phttp.Response {
	posts, err := h.svc.AllPosts(r.Context())
	if err != nil {
		return h.fail(err)
	}
	return phttp.OK(posts)
}

func (h *handlers) post(r *stdhttp.Request) phttp.Response {
	year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
	month, err2 := strconv.Atoi(chi.URLParam(r, "month"))
	day, err3 := strconv.Atoi(chi.URLParam(r, "day"))
	if err1 != nil || err2 != nil || err3 != nil {
		return phttp.Error(perr.InvalidArgf("permalink date components must be numeric"))
	}
	p, err := h.svc.PostByPermalink(r.Context(), year, month, day, chi.URLParam(r, "slug"))
	if err != nil {
		return h.fail(err)
	}
	return phttp.OK(p)
}

func (h *handlers) views(r *stdhttp.Request) phttp.Response {
	groups, err := h.svc.AllGroups(r.Context())
	if err != nil {
		return h.fail(err)
	}
	return phttp.OK(groups)
}

func (h *handlers) view(r *stdhttp.Request) phttp.Response {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		return phttp.Error(perr.InvalidArgf("view number must be numeric"))
	}
	g, err := h.svc.GroupByNumber(r.Context(), number)
	if err != nil {
		return h.fail(err)
	}
	return phttp.OK(g)
}

func (h *handlers) comments(r *stdhttp.Request) phttp.Response {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		return phttp.Error(perr.InvalidArgf("issue number must be numeric"))
	}
	cs, err := h.svc.Comments(r.Context(), number)
	if err != nil {
		return h.fail(err)
	}
	return phttp.OK(cs)
}

func (h *handlers) now(r *stdhttp.Request) phttp.Response {
	p, err := h.svc.NowPost(r.Context())
	if err != nil {
		return h.fail(err)
	}
	if p == nil {
		return phttp.Error(perr.NotFoundf("no current status"))
	}
	return phttp.OK(p)
}
