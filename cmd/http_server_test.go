package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTP API", func() {
	var (
		deps   *Dependencies
		server *httptest.Server
	)

	BeforeEach(func() {
		deps = newSeededDeps()
		router, err := newRouter(context.Background(), deps)
		Expect(err).NotTo(HaveOccurred())
		server = httptest.NewServer(router)
		DeferCleanup(server.Close)
	})

	do := func(method, path, token string, body interface{}) (*http.Response, []byte) {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req, err := http.NewRequest(method, server.URL+path, reader)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := server.Client().Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, raw
	}

	login := func(email string) string {
		resp, raw := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "password123"})
		Expect(resp.StatusCode).To(Equal(http.StatusOK), string(raw))
		var session struct {
			Token string `json:"access_token"`
		}
		Expect(json.Unmarshal(raw, &session)).To(Succeed())
		Expect(session.Token).NotTo(BeEmpty())
		return session.Token
	}

	It("serves probes, metrics and the API document without a session", func() {
		resp, _ := do(http.MethodGet, "/api/v1/ping", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("X-Request-ID")).NotTo(BeEmpty())

		resp, raw := do(http.MethodGet, "/api/v1/health", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(raw)).To(ContainSubstring(`"sqlite"`))

		resp, raw = do(http.MethodGet, "/openapi.json", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(raw)).To(ContainSubstring("/contracts/{id}/sign"))

		resp, raw = do(http.MethodGet, "/metrics", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(raw)).To(ContainSubstring("crm_http_requests_total"))
	})

	It("requires a bearer token for business routes", func() {
		resp, _ := do(http.MethodGet, "/api/v1/clients", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

		resp, _ = do(http.MethodGet, "/api/v1/clients", "not-a-token", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("answers an unknown email exactly like a wrong password", func() {
		wrong, wrongBody := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "sales@epicevents.test", "password": "nope"})
		unknown, unknownBody := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ghost@epicevents.test", "password": "nope"})
		Expect(wrong.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(unknown.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(unknownBody).To(Equal(wrongBody))
	})

	It("locks an identity out after repeated failures", func() {
		for i := 0; i < 5; i++ {
			resp, _ := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "support@epicevents.test", "password": "nope"})
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		}
		resp, _ := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "support@epicevents.test", "password": "password123"})
		Expect(resp.StatusCode).To(Equal(http.StatusTooManyRequests))
		Expect(resp.Header.Get("Retry-After")).NotTo(BeEmpty())
	})

	It("lets sales create clients they own and nothing more", func() {
		token := login("sales@epicevents.test")

		resp, raw := do(http.MethodGet, "/api/v1/me", token, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(raw)).To(ContainSubstring(`"SALES"`))

		resp, raw = do(http.MethodPost, "/api/v1/clients", token, map[string]string{
			"full_name":    "Nina Novak",
			"email":        "nina@novak.test",
			"phone":        "+33611223344",
			"company_name": "Novak Events",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated), string(raw))

		resp, _ = do(http.MethodGet, "/api/v1/users", token, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

		resp, _ = do(http.MethodGet, "/api/v1/reports/users", token, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

		resp, _ = do(http.MethodGet, "/api/v1/reports/contracts", token, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("keeps support away from client creation", func() {
		token := login("support@epicevents.test")
		resp, _ := do(http.MethodPost, "/api/v1/clients", token, map[string]string{
			"full_name":    "Otto Olsen",
			"email":        "otto@olsen.test",
			"phone":        "+33611223355",
			"company_name": "Olsen AS",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
	})

	It("gives management the reports and the audit trail", func() {
		token := login("manager@epicevents.test")

		for _, kind := range []string{"contracts", "events", "users"} {
			resp, raw := do(http.MethodGet, "/api/v1/reports/"+kind, token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK), string(raw))
		}
		resp, _ := do(http.MethodGet, "/api/v1/reports/payroll", token, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

		resp, raw := do(http.MethodGet, "/api/v1/audit?action=auth.", token, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(raw)).To(ContainSubstring("manager@epicevents.test"))
		Expect(string(raw)).To(ContainSubstring(`"source":"http"`))
	})
})
