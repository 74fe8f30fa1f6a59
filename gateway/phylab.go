package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"phylab_inventory_tool/models"
)

// 上游 PATCH update_item_statuses 的条目载荷。备注附加复用同一端点，
// 所以状态与备注字段都是可选的。
type ItemUpdate struct {
	ID              int64   `json:"id"`
	Status          string  `json:"status,omitempty"`
	Quantity        *int    `json:"quantity,omitempty"`
	AdminRemark     *string `json:"admin_remark,omitempty"`
	RemarkType      string  `json:"remark_type,omitempty"`
	RemarkCreatedAt string  `json:"remark_created_at,omitempty"`
}

type UpdateOutcome struct {
	UpdatedCount int     `json:"updated_count"`
	SkippedIDs   []int64 `json:"skipped_ids"`
}

// CreateRequestPayload 学生端购物车提交的载荷（上游字段名）。
type CreateRequestPayload struct {
	RequestID   string              `json:"request_id"`
	StudentName string              `json:"student_name"`
	StudentID   string              `json:"student_id"`
	Email       string              `json:"email"`
	TeacherName string              `json:"teacher_name,omitempty"`
	Purpose     string              `json:"purpose,omitempty"`
	BorrowDate  string              `json:"borrow_date,omitempty"`
	ReturnDate  string              `json:"return_date,omitempty"`
	Items       []CreateItemPayload `json:"items"`
	Status      string              `json:"status"`
}

type CreateItemPayload struct {
	ItemName  string `json:"item_name"`
	ItemKey   string `json:"item_key,omitempty"`
	Quantity  int    `json:"quantity"`
	ItemImage string `json:"item_image,omitempty"`
}

func (c *Client) ListRequests(ctx context.Context, status models.ItemStatus, o CallOpts) ([]models.BorrowRequest, Result) {
	path := "/api/borrow-requests/"
	if status != "" {
		path += "?status=" + string(status)
	}
	res := c.Do(ctx, http.MethodGet, path, nil, o)
	if !res.OK {
		return nil, res
	}
	return NormalizeRequestList(res.Data), res
}

func (c *Client) GetRequest(ctx context.Context, id string, o CallOpts) (*models.BorrowRequest, Result) {
	res := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/borrow-requests/%s/", id), nil, o)
	if !res.OK {
		return nil, res
	}
	var m map[string]any
	if err := json.Unmarshal(res.Data, &m); err != nil {
		res.OK = false
		res.Err = "bad detail payload: " + err.Error()
		return nil, res
	}
	req := NormalizeRequest(m)
	return &req, res
}

func (c *Client) CreateRequest(ctx context.Context, p CreateRequestPayload, o CallOpts) Result {
	return c.Do(ctx, http.MethodPost, "/api/borrow-requests/", p, o)
}

func (c *Client) UpdateItemStatuses(ctx context.Context, id string, items []ItemUpdate, o CallOpts) (UpdateOutcome, Result) {
	path := fmt.Sprintf("/api/borrow-requests/%s/update_item_statuses/", id)
	res := c.Do(ctx, http.MethodPatch, path, map[string]any{"items": items}, o)
	var out UpdateOutcome
	if res.OK && res.Data != nil {
		_ = json.Unmarshal(res.Data, &out)
	}
	return out, res
}

// History 先试专用 history 端点，再退回 status=returned 过滤。
func (c *Client) History(ctx context.Context, o CallOpts) ([]models.BorrowRequest, Result) {
	res := c.Do(ctx, http.MethodGet, "/api/borrow-requests/history/", nil, o)
	if !res.OK {
		res = c.Do(ctx, http.MethodGet, "/api/borrow-requests/?status=returned", nil, o)
	}
	if !res.OK {
		return nil, res
	}
	return NormalizeRequestList(res.Data), res
}

// Inventory

func (c *Client) ListInventory(ctx context.Context, o CallOpts) ([]models.InventoryItem, Result) {
	res := c.Do(ctx, http.MethodGet, "/api/inventory/", nil, o)
	if !res.OK {
		return nil, res
	}
	var list []map[string]any
	if err := json.Unmarshal(res.Data, &list); err != nil {
		res.OK = false
		res.Err = "bad inventory payload: " + err.Error()
		return nil, res
	}
	out := make([]models.InventoryItem, 0, len(list))
	for _, m := range list {
		out = append(out, NormalizeInventory(m))
	}
	return out, res
}

// CreateInventory 透传 multipart（带图片文件）。
func (c *Client) CreateInventory(ctx context.Context, contentType string, body []byte, o CallOpts) Result {
	return c.DoRaw(ctx, http.MethodPost, "/api/inventory/", contentType, body, o)
}

func (c *Client) PatchInventory(ctx context.Context, id int64, fields map[string]any, o CallOpts) Result {
	return c.Do(ctx, http.MethodPatch, fmt.Sprintf("/api/inventory/%d/", id), fields, o)
}

func (c *Client) DeleteInventory(ctx context.Context, id int64, o CallOpts) Result {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/inventory/%d/", id), nil, o)
}

func (c *Client) SetStock(ctx context.Context, id int64, stock int, o CallOpts) Result {
	path := fmt.Sprintf("/api/inventory/%d/set_stock/", id)
	return c.Do(ctx, http.MethodPost, path, map[string]any{"stock": stock}, o)
}

func (c *Client) ExportInventoryXLSX(ctx context.Context, o CallOpts) ([]byte, string, Result) {
	return c.Download(ctx, "/api/inventory/export_xlsx/", o)
}

// Reviews

func (c *Client) ListReviews(ctx context.Context, o CallOpts) (json.RawMessage, Result) {
	res := c.Do(ctx, http.MethodGet, "/api/reviews/", nil, o)
	if !res.OK {
		return nil, res
	}
	return res.Data, res
}

func (c *Client) CreateReview(ctx context.Context, contentType string, body []byte, o CallOpts) Result {
	return c.DoRaw(ctx, http.MethodPost, "/api/reviews/", contentType, body, o)
}

func (c *Client) ResolveReview(ctx context.Context, id int64, o CallOpts) Result {
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/reviews/%d/resolve/", id), nil, o)
}
