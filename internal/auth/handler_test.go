package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		handler *Handler
		service *Service
	)

	ginkgo.BeforeEach(func() {
		repo := newMockAccountRepository()
		tokens := NewTokenService("test-secret", time.Hour, testLogger())
		guard := NewGuard(NewMemoryAttemptStore(), 2, time.Minute, testLogger())
		service = NewService(repo, tokens, guard, nil, &recordingPublisher{}, testLogger())
		handler = NewHandler(service)
	})

	login := func(email, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(LoginDTO{Email: email, Password: password})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		return rec
	}

	ginkgo.It("returns a bearer token that authenticates /me", func() {
		// Given a successful login
		rec := login("manager@epic.test", "correct_password")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

		var session Session
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &session)).To(gomega.Succeed())
		gomega.Expect(session.Token).NotTo(gomega.BeEmpty())

		// When the token is presented to a protected route
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		rec = httptest.NewRecorder()
		handler.AuthMiddleware(http.HandlerFunc(handler.Me)).ServeHTTP(rec, req)

		// Then the actor and role permissions come back
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var me MeResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &me)).To(gomega.Succeed())
		gomega.Expect(me.Actor.Role).To(gomega.Equal(RoleManagement))
		gomega.Expect(me.Permissions).To(gomega.ContainElement(PermManageUsers))
	})

	ginkgo.It("answers 401 for bad credentials and 429 with Retry-After once locked", func() {
		gomega.Expect(login("sales@epic.test", "wrong").Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(login("sales@epic.test", "wrong").Code).To(gomega.Equal(http.StatusUnauthorized))

		rec := login("sales@epic.test", "correct_password")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusTooManyRequests))
		gomega.Expect(rec.Header().Get("Retry-After")).NotTo(gomega.BeEmpty())
	})

	ginkgo.It("rejects a malformed body with 400", func() {
		gomega.Expect(login("not-an-email", "x").Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("refuses protected routes without a valid token", func() {
		called := false
		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

		rec := httptest.NewRecorder()
		handler.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec = httptest.NewRecorder()
		handler.AuthMiddleware(next).ServeHTTP(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(called).To(gomega.BeFalse())
	})
})
