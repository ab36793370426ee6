package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

var _ = Describe("HealthHandler", func() {
	var (
		db   *sqlx.DB
		mock sqlmock.Sqlmock
	)

	BeforeEach(func() {
		sqlDB, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		db = sqlx.NewDb(sqlDB, "sqlmock")
		mock = m
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
		db.Close()
	})

	readiness := func(h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
		rec := httptest.NewRecorder()
		h.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		var body HealthResponse
		Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
		return rec, body
	}

	It("should answer ping without touching the database", func() {
		rec := httptest.NewRecorder()
		NewHealthHandler(db, nil).pingHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"OK"`))
	})

	It("should report healthy when postgres answers", func() {
		mock.ExpectPing()

		rec, body := readiness(NewHealthHandler(db, nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body.Status).To(Equal(HealthHealthy))
		Expect(body.Components).To(HaveKey("postgres"))
		Expect(body.Components).NotTo(HaveKey("redis"))
	})

	It("should report unhealthy with 503 when postgres is down", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec, body := readiness(NewHealthHandler(db, nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(body.Status).To(Equal(HealthUnhealthy))
		Expect(body.Components["postgres"].Message).To(ContainSubstring("connection refused"))
	})

	Context("with redis configured", func() {
		var mr *miniredis.Miniredis

		BeforeEach(func() {
			var err error
			mr, err = miniredis.Run()
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			mr.Close()
		})

		It("should include redis in the report", func() {
			mock.ExpectPing()
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer client.Close()

			rec, body := readiness(NewHealthHandler(db, client))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body.Components["redis"].Status).To(Equal(HealthHealthy))
		})

		It("should only degrade when redis is unreachable", func() {
			mock.ExpectPing()
			client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
			defer client.Close()
			mr.Close()

			rec, body := readiness(NewHealthHandler(db, client))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body.Status).To(Equal(HealthDegraded))
			Expect(body.Components["redis"].Status).To(Equal(HealthUnhealthy))
		})
	})
})
