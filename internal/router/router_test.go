package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"acordex/internal/domain"
	"acordex/internal/handler"
	"acordex/internal/router"
	"acordex/mocks"
)

func setupRouter() (*gin.Engine, *mocks.MockRuleService, *mocks.MockValidationRuleRepo) {
	gin.SetMode(gin.TestMode)
	ruleSvc := new(mocks.MockRuleService)
	repo := new(mocks.MockValidationRuleRepo)
	r := router.Setup(
		zap.NewNop(),
		[]string{"http://localhost:3000"},
		handler.NewExtractionHandler(new(mocks.MockExtractionService)),
		handler.NewValidationHandler(new(mocks.MockValidationService), ruleSvc),
		handler.NewRuleHandler(ruleSvc),
		handler.NewHealthHandler(repo),
	)
	return r, ruleSvc, repo
}

func TestRouter_RuleRoutes(t *testing.T) {
	r, ruleSvc, _ := setupRouter()
	ruleSvc.On("List", mock.Anything).Return([]domain.ValidationRule{}, nil)
	ruleSvc.On("Get", mock.Anything, int64(12)).Return(&domain.ValidationRule{ID: 12}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rules", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/rules/12", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/rules/export?format=csv", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestRouter_ReadinessUsesStore(t *testing.T) {
	r, _, repo := setupRouter()
	repo.On("Ping", mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestRouter_Metrics(t *testing.T) {
	r, _, _ := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	r.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "acordex_http_requests_total"))
}
