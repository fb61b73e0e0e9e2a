package handlers

import (
	"fmt"
	"net/http"
)

// Pages serves the application shell for browser routes. Rendering proper is
// done by the frontend; the backend only needs these paths to exist so the
// route gate can act on them.
func Pages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><title>PetSoft</title><div id=\"root\" data-path=%q></div>", r.URL.Path)
	}
}
