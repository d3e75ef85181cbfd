package server

import (
	"log"
	"net/http"
	"time"
)

// loggingMiddleware logs each request with how long it took to serve.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Println(r.Method, r.RequestURI, time.Since(start))
	})
}
