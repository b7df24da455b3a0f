package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/epic-events-crm/internal/transport/rest"
)

var _ = Describe("HealthHandler", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	It("answers the liveness probe without touching dependencies", func() {
		h := rest.NewHealthHandler(nil, log)
		rec := httptest.NewRecorder()
		h.Ping(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"OK"`))
	})

	It("reports healthy when the database answers a ping", func() {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		mock.ExpectPing()

		h := rest.NewHealthHandler(map[string]rest.Pinger{"postgres": db}, log)
		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("postgres"))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("answers 503 when any component fails", func() {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		mock.ExpectPing()

		down := rest.PingerFunc(func(context.Context) error { return errors.New("connection refused") })
		h := rest.NewHealthHandler(map[string]rest.Pinger{"postgres": db, "redis": down}, log)
		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
		Expect(resp.Components["postgres"].Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components["redis"].Status).To(Equal(rest.HealthUnhealthy))
		Expect(resp.Components["redis"].Message).To(Equal("connection refused"))
	})
})
