package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/account"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
)

const secret = "test-secret"

func token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := account.SignAccessToken(secret, userID, role, "u@example.com", time.Now(), time.Minute)
	require.NoError(t, err)
	return tok
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c), "role": Role(c), "requestId": logging.RequestID(c.Request.Context())})
	})
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthGuard(t *testing.T) {
	r := newRouter(UserAuth(secret))

	w := do(r, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, w.Body.String())

	w = do(r, "Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "Authorization", "Bearer "+token(t, 42, models.RoleUser))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":42`)
	assert.Contains(t, w.Body.String(), `"role":"user"`)
}

func TestSellerAuthRejectsBuyers(t *testing.T) {
	r := newRouter(SellerAuth(secret))

	w := do(r, "Authorization", "Bearer "+token(t, 1, models.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "Authorization", "Bearer "+token(t, 2, models.RoleSeller))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := do(r, RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"requestId":"abc-123"`)

	w = do(r, "", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	r := newRouter(RateLimit(NewLocalLimiter(2), ClientKey))
	assert.Equal(t, http.StatusOK, do(r, "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "", "").Code)

	open := newRouter(RateLimit(failingLimiter{}, ClientKey))
	assert.Equal(t, http.StatusOK, do(open, "", "").Code)
}

func TestLocalLimiterSweep(t *testing.T) {
	l := NewLocalLimiter(1)
	_, _ = l.Allow(context.Background(), "a")
	l.Sweep(-time.Second)
	assert.Empty(t, l.limiters)
}

// TestRedisLimiter requires a running Redis and skips otherwise.
func TestRedisLimiter(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	l := NewRedisLimiter(client, 2)
	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
