package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"phylab_inventory_tool/app"
	"phylab_inventory_tool/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.NewSrv(a)
	reqCtl := controllers.NewRequestController(s)
	invCtl := controllers.NewInventoryController(s)
	revCtl := controllers.NewReviewController(s)
	sessCtl := controllers.NewSessionController(s)

	authMW := app.AuthRequired(a)
	seenMW := app.TouchLastSeen(a.RDB, 5*time.Minute)

	// ------------------------------
	// 会话（公开）
	// ------------------------------
	sess := r.Group("/api/session")
	{
		sess.POST("/login", sessCtl.Login)
		sess.POST("/logout", sessCtl.Logout)
		sess.GET("/whoami", sessCtl.WhoAmI)
	}

	// ------------------------------
	// 借用请求：学生提交公开，其余管理员
	// ------------------------------
	r.POST("/api/requests", reqCtl.Submit)

	reqs := r.Group("/api/requests", authMW, seenMW)
	{
		reqs.GET("", reqCtl.List) // ?status=pending|borrowed|returned
		reqs.GET("/:id", reqCtl.Detail)
		reqs.POST("/process", reqCtl.Process) // 批量批准/拒绝
		reqs.POST("/:id/return", reqCtl.Return)
		reqs.PUT("/:id/remark", reqCtl.SaveRemark)
		reqs.GET("/:id/remark", reqCtl.GetRemark)
	}

	// 历史视图（returned 的别名路由）
	r.GET("/api/history", authMW, func(c *app.Ctx) {
		c.Request.URL.RawQuery = "status=returned"
		reqCtl.List(c)
	})

	// ------------------------------
	// 库存：浏览公开，变更管理员
	// ------------------------------
	r.GET("/api/inventory", invCtl.List)

	inv := r.Group("/api/inventory", authMW, seenMW)
	{
		inv.POST("", invCtl.Create)
		inv.PATCH("/:id", invCtl.Patch)
		inv.DELETE("/:id", invCtl.Delete)
		inv.POST("/:id/stock", invCtl.SetStock)
		inv.GET("/export", invCtl.Export)
	}

	// ------------------------------
	// 反馈：提交/浏览公开，处理管理员
	// ------------------------------
	r.GET("/api/reviews", revCtl.List)
	r.POST("/api/reviews", revCtl.Create)
	r.POST("/api/reviews/:id/resolve", authMW, revCtl.Resolve)
}
