package httpapi

import (
	"net/http"

	"agrishop-be/internal/content"

	"github.com/go-chi/chi/v5"
)

// contentHandler serves one content kind.
type contentHandler[T content.Entry] struct {
	svc      content.Service[T]
	newEntry func() T
}

func (c contentHandler[T]) path() string { return "/api/content/" + c.svc.Kind() }

func (c contentHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	entries, err := c.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (c contentHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	e, err := c.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (c contentHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	e := c.newEntry()
	if err := decodeJSON(w, r, e); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := c.svc.Create(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (c contentHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	e := c.newEntry()
	if err := decodeJSON(w, r, e); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := c.svc.Update(r.Context(), chi.URLParam(r, "id"), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c contentHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func mountContentReads[T content.Entry](r chi.Router, c contentHandler[T]) {
	r.Get(c.path(), c.list)
	r.Get(c.path()+"/{id}", c.get)
}

func mountContentWrites[T content.Entry](r chi.Router, c contentHandler[T]) {
	r.Post(c.path(), c.create)
	r.Put(c.path()+"/{id}", c.update)
	r.Delete(c.path()+"/{id}", c.delete)
}
