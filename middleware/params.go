package middleware

import (
	"net/http"
	"net/url"
	"sort"

	"github.com/MrEthical07/sessionauth"
)

// NoQueryParams rejects requests carrying any query parameter.
func NoQueryParams() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if q := r.URL.Query(); len(q) > 0 {
				msg := "Invalid query parameters: " + firstKey(q) + ". Query parameters are not permitted."
				WriteRejection(w, r, sessionauth.Reject(sessionauth.KindBadRequest, msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func firstKey(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
