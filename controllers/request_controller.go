package controllers

import (
	"net/http"
	"strconv"

	"phylab_inventory_tool/app"
	"phylab_inventory_tool/models"
	"phylab_inventory_tool/reconciler"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// 列表：?status=pending|borrowed|returned，默认 pending
func (rc *RequestController) List(c *app.Ctx) {
	status := models.ItemStatus(c.DefaultQuery("status", "pending"))
	opts := app.OptsFrom(c)

	var (
		list   []models.BorrowRequest
		remote bool
	)
	switch status {
	case models.StatusBorrowed:
		list, remote = rc.Rec.ActiveLoans(c.Request.Context(), opts)
	case models.StatusReturned:
		list, remote = rc.Rec.HistoryView(c.Request.Context(), opts)
	default:
		list, remote = rc.Rec.Pending(c.Request.Context(), opts)
	}

	c.JSON(http.StatusOK, app.H{"ok": true, "remote": remote, "requests": list})
}

func (rc *RequestController) Detail(c *app.Ctx) {
	id := c.Param("id")
	req := rc.Rec.Detail(c.Request.Context(), id, app.OptsFrom(c))
	if req == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "request not found"})
		return
	}
	c.JSON(http.StatusOK, req)
}

// Submit 学生购物车提交
func (rc *RequestController) Submit(c *app.Ctx) {
	var in struct {
		StudentName string `json:"studentName" binding:"required"`
		StudentID   string `json:"studentId"`
		Email       string `json:"email"`
		TeacherName string `json:"teacherName"`
		Purpose     string `json:"purpose"`
		BorrowDate  string `json:"borrowDate"`
		ReturnDate  string `json:"returnDate"`
		Items       []struct {
			Name     string `json:"name" binding:"required"`
			ItemKey  string `json:"itemKey"`
			Quantity int    `json:"quantity"`
			Image    string `json:"image"`
		} `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	req := models.BorrowRequest{
		StudentName: in.StudentName,
		StudentID:   in.StudentID,
		Email:       in.Email,
		TeacherName: in.TeacherName,
		Purpose:     in.Purpose,
		BorrowDate:  in.BorrowDate,
		ReturnDate:  in.ReturnDate,
	}
	for _, it := range in.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		req.Items = append(req.Items, models.RequestItem{
			Name: it.Name, ItemKey: it.ItemKey, Quantity: qty, Image: it.Image,
		})
	}

	created, oc := rc.Rec.Submit(c.Request.Context(), req, app.OptsFrom(c))
	c.JSON(http.StatusCreated, app.H{
		"ok":      oc.Remote || oc.Local,
		"level":   oc.Level(),
		"request": created,
	})
}

// Process 批量批准/拒绝：action=approve|reject
func (rc *RequestController) Process(c *app.Ctx) {
	var in struct {
		Action  string             `json:"action" binding:"required,oneof=approve reject"`
		Actions []reconciler.Action `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	opts := app.OptsFrom(c)
	var out reconciler.BatchOutcome
	if in.Action == "approve" {
		out = rc.Rec.Approve(c.Request.Context(), in.Actions, opts)
	} else {
		out = rc.Rec.Reject(c.Request.Context(), in.Actions, opts)
	}

	c.JSON(http.StatusOK, app.H{
		"ok":       out.Level() != reconciler.LevelError,
		"level":    out.Level(),
		"requests": out.Requests,
	})
}

// Return 归还单个条目
func (rc *RequestController) Return(c *app.Ctx) {
	reqID := c.Param("id")
	var in struct {
		ItemID int64 `json:"itemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	oc := rc.Rec.Return(c.Request.Context(), reqID, in.ItemID, app.OptsFrom(c))
	c.JSON(http.StatusOK, app.H{
		"ok":      oc.Remote || oc.Local,
		"level":   oc.Level(),
		"outcome": oc,
	})
}

// SaveRemark 给条目挂备注
func (rc *RequestController) SaveRemark(c *app.Ctx) {
	reqID := c.Param("id")
	var in struct {
		ItemID int64  `json:"itemId" binding:"required"`
		Type   string `json:"type"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	remark := models.Remark{Type: models.RemarkType(in.Type), Text: in.Text}
	oc := rc.Rec.SaveRemark(c.Request.Context(), reqID, in.ItemID, remark, app.OptsFrom(c))
	status := http.StatusOK
	if oc.Level() == reconciler.LevelError {
		status = http.StatusBadGateway
		if oc.Err == "empty remark" || oc.Err == "missing request or item id" {
			status = http.StatusBadRequest
		}
	}
	c.JSON(status, app.H{"ok": oc.Remote, "level": oc.Level(), "outcome": oc})
}

// GetRemark 备注弹窗回填：读上游详情里的条目备注
func (rc *RequestController) GetRemark(c *app.Ctx) {
	reqID := c.Param("id")
	itemID, err := strconv.ParseInt(c.Query("itemId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing itemId"})
		return
	}

	req := rc.Rec.Detail(c.Request.Context(), reqID, app.OptsFrom(c))
	if req == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "request not found"})
		return
	}
	it := req.FindItem(itemID)
	if it == nil || (it.AdminRemark == "" && it.RemarkType == "") {
		c.JSON(http.StatusOK, app.H{"remark": nil})
		return
	}
	c.JSON(http.StatusOK, app.H{"remark": app.H{
		"type":      it.RemarkType,
		"label":     it.RemarkType.Label(),
		"text":      it.AdminRemark,
		"createdAt": it.RemarkCreatedAt,
	}})
}
