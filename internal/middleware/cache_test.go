package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/venue-seat-booking/internal/config"
)

func cacheConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        TTL:          time.Minute,
        Prefix:       "cache",
        MaxBodyBytes: 1 << 20,
    }
}

func runCached(t *testing.T, mw echo.MiddlewareFunc, method, target string, h echo.HandlerFunc) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, target, nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/layout")
    require.NoError(t, mw(h)(c))
    return rec
}

func TestRedisCacheHitSkipsHandler(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    mw := NewRedisCache(cacheConfig(), rdb)

    calls := 0
    h := func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"total_seats": 80})
    }

    first := runCached(t, mw, http.MethodGet, "/v1/layout", h)
    require.Equal(t, http.StatusOK, first.Code)
    require.Equal(t, "MISS", first.Header().Get("X-Cache"))
    require.Equal(t, 1, calls)

    second := runCached(t, mw, http.MethodGet, "/v1/layout", h)
    require.Equal(t, http.StatusOK, second.Code)
    require.Equal(t, "HIT", second.Header().Get("X-Cache"))
    require.Equal(t, 1, calls, "cached response must not invoke the handler")
    require.Equal(t, first.Body.String(), second.Body.String())
    require.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
}

func TestRedisCacheKeyVariesByQuery(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    mw := NewRedisCache(cacheConfig(), rdb)

    h := func(c echo.Context) error {
        return c.String(http.StatusOK, c.QueryParam("v"))
    }

    a := runCached(t, mw, http.MethodGet, "/v1/layout?v=a", h)
    b := runCached(t, mw, http.MethodGet, "/v1/layout?v=b", h)
    require.Equal(t, "a", a.Body.String())
    require.Equal(t, "b", b.Body.String())
    require.Equal(t, "MISS", b.Header().Get("X-Cache"))
}

func TestRedisCacheOnlyStoresOK(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    mw := NewRedisCache(cacheConfig(), rdb)

    calls := 0
    h := func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "down"})
    }

    runCached(t, mw, http.MethodGet, "/v1/layout", h)
    rec := runCached(t, mw, http.MethodGet, "/v1/layout", h)
    require.Equal(t, http.StatusServiceUnavailable, rec.Code)
    require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    require.Equal(t, 2, calls, "error responses must not be cached")
}

func TestRedisCacheSkipsUncachedMethods(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    mw := NewRedisCache(cacheConfig(), rdb)

    calls := 0
    h := func(c echo.Context) error {
        calls++
        return c.String(http.StatusOK, "ok")
    }

    for i := 0; i < 2; i++ {
        rec := runCached(t, mw, http.MethodPost, "/v1/layout", h)
        require.Equal(t, http.StatusOK, rec.Code)
        require.Empty(t, rec.Header().Get("X-Cache"))
    }
    require.Equal(t, 2, calls)
}

func TestRedisCacheEntryExpires(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    mw := NewRedisCache(cacheConfig(), rdb)

    calls := 0
    h := func(c echo.Context) error {
        calls++
        return c.String(http.StatusOK, "ok")
    }

    runCached(t, mw, http.MethodGet, "/v1/layout", h)
    mr.FastForward(2 * time.Minute)
    rec := runCached(t, mw, http.MethodGet, "/v1/layout", h)
    require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    require.Equal(t, 2, calls)
}

func TestRedisCacheDisabledPassesThrough(t *testing.T) {
    cfg := cacheConfig()
    cfg.Enabled = false
    mw := NewRedisCache(cfg, nil)

    calls := 0
    h := func(c echo.Context) error {
        calls++
        return c.String(http.StatusOK, "ok")
    }

    for i := 0; i < 2; i++ {
        rec := runCached(t, mw, http.MethodGet, "/v1/layout", h)
        require.Equal(t, http.StatusOK, rec.Code)
    }
    require.Equal(t, 2, calls)
}
