package rest_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/epic-events-crm/internal/transport/rest"
)

var _ = Describe("OpenAPI document", func() {
	It("loads and validates the embedded document", func() {
		doc, err := rest.LoadOpenAPI(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Paths.Find("/clients")).NotTo(BeNil())
		Expect(doc.Paths.Find("/auth/login")).NotTo(BeNil())
		Expect(doc.Paths.Find("/reports/{kind}")).NotTo(BeNil())
	})

	It("serves the document as JSON that round-trips through the loader", func() {
		doc, err := rest.LoadOpenAPI(context.Background())
		Expect(err).NotTo(HaveOccurred())

		rec := httptest.NewRecorder()
		rest.OpenAPIHandler(doc)(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

		again, err := openapi3.NewLoader().LoadFromData(rec.Body.Bytes())
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Info.Title).To(Equal(doc.Info.Title))
	})
})
