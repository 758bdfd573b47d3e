package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/barter-backend/internal/logger"
	"github.com/ignatzorin/barter-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log.SetOutput(io.Discard)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenManager("middleware-secret", time.Hour)
	userID := uuid.New()
	valid, _, err := tokens.GenerateAccess(userID)
	require.NoError(t, err)

	var seen uuid.UUID
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		seen = c.MustGet(ContextUserIDKey).(uuid.UUID)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/me", http.Header{"Authorization": {"Token " + valid}}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/me", http.Header{"Authorization": {"Bearer broken"}}).Code)

	w := serve(r, "GET", "/me", http.Header{"Authorization": {"Bearer " + valid}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, seen)
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/trades/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, serve(r, "GET", "/trades/123", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/trades/"+uuid.NewString(), nil).Code)
}

func TestRateLimitMiddleware_PerUser(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader("X-User")); err == nil {
			c.Set(ContextUserIDKey, id)
		}
		c.Next()
	}, RateLimitMiddleware(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	as := http.Header{"X-User": {alice.String()}}
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/ping", as).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/ping", as).Code)

	w := serve(r, "GET", "/ping", as)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// лимит считается отдельно для каждого пользователя
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/ping", http.Header{"X-User": {bob.String()}}).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://barter.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "GET", "/x", http.Header{"Origin": {"https://barter.example"}})
	assert.Equal(t, "https://barter.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, "GET", "/x", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, "OPTIONS", "/x", http.Header{"Origin": {"https://barter.example"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), RequestLogger())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, "GET", "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
