package middleware

import (
	"net/http"
	"strings"
)

const MethodOverrideField = "_method"

var overridableMethods = map[string]struct{}{
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// MethodOverride lets HTML forms reach PUT/PATCH/DELETE routes through a POST carrying _method
// in the query string or the urlencoded body.
func MethodOverride() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if method := overrideMethod(r); method != "" {
					r.Method = method
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func overrideMethod(r *http.Request) string {
	method := r.URL.Query().Get(MethodOverrideField)
	if method == "" && extractContentType(r.Header.Get("Content-Type")) == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err == nil {
			method = r.PostForm.Get(MethodOverrideField)
		}
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := overridableMethods[method]; !ok {
		return ""
	}
	return method
}
