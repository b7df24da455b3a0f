package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocumentURL is where the router serves the OpenAPI document.
const DocumentURL = "/openapi.json"

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(DocumentURL),
	)
}
