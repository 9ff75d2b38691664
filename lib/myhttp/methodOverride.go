package myhttp

import (
	"net/http"
	"strings"
)

const methodOverrideParam = "_method"

// MethodOverride lets html-forms, that can only POST, reach PUT and DELETE endpoints via "?_method=PUT".
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := strings.ToUpper(r.URL.Query().Get(methodOverrideParam))
			switch override {
			case http.MethodPut, http.MethodDelete, http.MethodPatch:
				r.Method = override
			}
		}
		next.ServeHTTP(w, r)
	})
}
