package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"phylab_inventory_tool/gateway"
)

const AppSessionCookie = "phylab_session"

const ctxCallOpts = "callOpts"

// AuthRequired 解析本次请求可用的上游凭据并放进 Context：
// 1) 会话 Cookie -> Redis 里的上游 token
// 2) 显式 Authorization: Token <v> 透传
// 3) 都没有时透传浏览器 Cookie（对应 credentials: include）
// 三者皆无则 401。
func AuthRequired(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts gateway.CallOpts

		if ck, err := c.Request.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
			if as, err := a.Sessions().Get(c.Request.Context(), ck.Value); err == nil {
				opts.Token = as.Token
			}
		}
		if opts.Token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Token ") {
				opts.Token = strings.TrimPrefix(h, "Token ")
			}
		}
		if opts.Token == "" {
			opts.Cookie = c.GetHeader("Cookie")
		}

		if opts.Token == "" && opts.Cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set(ctxCallOpts, opts)
		c.Next()
	}
}

// OptsFrom 公开路由上也能用：拿不到凭据时返回零值（匿名调用）。
func OptsFrom(c *gin.Context) gateway.CallOpts {
	if v, ok := c.Get(ctxCallOpts); ok {
		if o, ok := v.(gateway.CallOpts); ok {
			return o
		}
	}
	var opts gateway.CallOpts
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Token ") {
		opts.Token = strings.TrimPrefix(h, "Token ")
	} else {
		opts.Cookie = c.GetHeader("Cookie")
	}
	return opts
}
