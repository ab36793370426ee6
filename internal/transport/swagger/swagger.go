package swagger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecRoute is where the raw OpenAPI document is served.
const SpecRoute = "/openapi.yml"

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(SpecRoute),
	)
}

// LoadSpec parses and validates the OpenAPI document at path so a broken
// document fails startup instead of the Swagger UI.
func LoadSpec(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi spec %s: %w", path, err)
	}
	return doc, nil
}

// SpecHandler serves the document file as-is.
func SpecHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, path)
	}
}
