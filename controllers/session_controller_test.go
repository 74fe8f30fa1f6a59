package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"phylab_inventory_tool/app"
	"phylab_inventory_tool/gateway"
)

func loginCtx(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/session/login", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestLoginRejectsTokenRefusedUpstream(t *testing.T) {
	// 上游活着且明确说 token 无效：不能当离线模式收下
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Token bad-token", r.Header.Get("Authorization"))
		http.Error(w, `{"detail":"Invalid token."}`, http.StatusUnauthorized)
	}))
	defer upstream.Close()

	a := &app.App{Gateway: gateway.New([]string{upstream.URL}, time.Second)}
	sc := NewSessionController(NewSrv(a))

	c, w := loginCtx(t, `{"token":"bad-token"}`)
	sc.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, w.Result().Cookies()) // 不发会话 Cookie
}

func TestLoginValidatesPayload(t *testing.T) {
	a := &app.App{Gateway: gateway.New(nil, time.Second)}
	sc := NewSessionController(NewSrv(a))

	c, w := loginCtx(t, `{}`)
	sc.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
