package myhttp

import (
	"fmt"
	"net/http"
	"strings"
)

func HostnameWithScheme(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// WantsJSON reports whether the client prefers json over a rendered page.
func WantsJSON(r *http.Request) bool {
	return preferredType(r) == "application/json"
}

// WantsHTML reports whether the client explicitly asked for a page, as browsers do.
func WantsHTML(r *http.Request) bool {
	return preferredType(r) == "text/html"
}

// preferredType returns whichever of json and html comes first in the Accept header
func preferredType(r *http.Request) string {
	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := strings.TrimSpace(strings.Split(accept, ";")[0])
		if mediaType == "application/json" || mediaType == "text/html" {
			return mediaType
		}
	}
	return ""
}
