package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"phylab_inventory_tool/app"
	"phylab_inventory_tool/gateway"
	"phylab_inventory_tool/models"
	"phylab_inventory_tool/reconciler"
)

type SessionController struct{ *Srv }

func NewSessionController(s *Srv) *SessionController { return &SessionController{Srv: s} }

// Login 前端把上游签发的 token 交给 facade 保管。
// 先拿 token 打一次上游验证；上游整体不可达时也收下（离线模式），
// 但 401/403 直接拒绝。
func (sc *SessionController) Login(c *app.Ctx) {
	var in struct {
		Token string `json:"token" binding:"required"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	level := reconciler.LevelSuccess
	_, res := sc.App.Gateway.ListRequests(ctx, models.StatusPending, gateway.CallOpts{Token: in.Token})
	if !res.OK {
		if res.Status == http.StatusUnauthorized || res.Status == http.StatusForbidden {
			c.JSON(http.StatusUnauthorized, app.H{"error": "token rejected by upstream"})
			return
		}
		// 上游不可达：离线收下，标 warning
		level = reconciler.LevelWarning
	}

	sid := uuid.NewString()
	if err := sc.App.Sessions().Create(ctx, sid, in.Token, in.Email); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(sc.App.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(sc.App.Config.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true, "level": level})
}

func (sc *SessionController) Logout(c *app.Ctx) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = sc.App.Sessions().Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(sc.App.Config.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (sc *SessionController) WhoAmI(c *app.Ctx) {
	ck, err := c.Request.Cookie(app.AppSessionCookie)
	if err != nil || ck.Value == "" {
		c.JSON(http.StatusUnauthorized, app.H{"error": "no session"})
		return
	}
	as, err := sc.App.Sessions().Get(c.Request.Context(), ck.Value)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid session"})
		return
	}
	c.JSON(http.StatusOK, app.H{"email": as.Email, "issuedAt": as.IssuedAt, "expiresAt": as.ExpiresAt})
}
