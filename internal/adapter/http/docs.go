package http

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	docsPath    = "/apidocs"
	openAPIPath = docsPath + "/openapi.yaml"
)

//go:embed apidocs/openapi.yaml
var openAPIDocument []byte

// docsRoutes serves the OpenAPI document and a Swagger UI that loads it.
func docsRoutes(r chi.Router) {
	r.Get(openAPIPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPIDocument)
	})
	r.Get(docsPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, docsPath+"/index.html", http.StatusMovedPermanently)
	})
	r.Get(docsPath+"/*", httpSwagger.Handler(httpSwagger.URL(openAPIPath)))
}
