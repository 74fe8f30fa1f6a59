package controllers

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"phylab_inventory_tool/app"
	"phylab_inventory_tool/models"
	"phylab_inventory_tool/reconciler"
)

type ReviewController struct{ *Srv }

func NewReviewController(s *Srv) *ReviewController { return &ReviewController{Srv: s} }

func (rc *ReviewController) List(c *app.Ctx) {
	data, res := rc.App.Gateway.ListReviews(c.Request.Context(), app.OptsFrom(c))
	if res.OK {
		c.Data(http.StatusOK, "application/json", data)
		return
	}
	// 上游不可达时给本地缓存的反馈
	c.JSON(http.StatusOK, app.H{
		"ok": true, "remote": false,
		"reviews": rc.App.Cache.Reviews(c.Request.Context()),
	})
}

// Create 反馈提交：multipart（可带压缩图片）透传；
// 上游失败时留在本地，等下次在线再看。
func (rc *ReviewController) Create(c *app.Ctx) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	res := rc.App.Gateway.CreateReview(ctx, c.ContentType(), body, app.OptsFrom(c))
	if res.OK {
		c.Data(http.StatusCreated, "application/json", res.Data)
		return
	}

	// 只缓存文本字段，图片不落地。body 已读完，回填后再解析表单。
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	review := models.Review{
		ItemName:        c.Request.FormValue("item_name"),
		Comment:         c.Request.FormValue("comment"),
		SubmittedByName: c.Request.FormValue("submitted_by_name"),
		SubmittedByMail: c.Request.FormValue("submitted_by_email"),
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if review.ItemName == "" {
		c.JSON(http.StatusBadGateway, app.H{"ok": false, "level": reconciler.LevelError, "error": res.Err})
		return
	}
	reviews := rc.App.Cache.Reviews(ctx)
	reviews = append(reviews, review)
	if err := rc.App.Cache.SaveReviews(ctx, reviews); err != nil {
		c.JSON(http.StatusBadGateway, app.H{"ok": false, "level": reconciler.LevelError, "error": res.Err})
		return
	}
	c.JSON(http.StatusCreated, app.H{"ok": true, "level": reconciler.LevelWarning, "review": review})
}

func (rc *ReviewController) Resolve(c *app.Ctx) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad review id"})
		return
	}
	res := rc.App.Gateway.ResolveReview(c.Request.Context(), id, app.OptsFrom(c))
	if !res.OK {
		c.JSON(http.StatusBadGateway, app.H{"ok": false, "level": reconciler.LevelError, "error": res.Err})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "level": reconciler.LevelSuccess})
}
