// reconciler 是请求/条目状态机的执行者：批量审批、拒绝、归还、备注。
// 持久化策略是双路互斥：先打上游，成功则本地不动（再从上游刷新镜像）；
// 失败则本地缓存做补偿写，并把结果降级为 warning。
package reconciler

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"phylab_inventory_tool/cache"
	"phylab_inventory_tool/gateway"
	"phylab_inventory_tool/models"
)

// Gateway 是 reconciler 用到的上游调用面（便于测试替身）。
type Gateway interface {
	ListRequests(ctx context.Context, status models.ItemStatus, o gateway.CallOpts) ([]models.BorrowRequest, gateway.Result)
	GetRequest(ctx context.Context, id string, o gateway.CallOpts) (*models.BorrowRequest, gateway.Result)
	History(ctx context.Context, o gateway.CallOpts) ([]models.BorrowRequest, gateway.Result)
	CreateRequest(ctx context.Context, p gateway.CreateRequestPayload, o gateway.CallOpts) gateway.Result
	UpdateItemStatuses(ctx context.Context, id string, items []gateway.ItemUpdate, o gateway.CallOpts) (gateway.UpdateOutcome, gateway.Result)
}

type Reconciler struct {
	gw  Gateway
	lab *cache.Lab
}

func New(gw Gateway, lab *cache.Lab) *Reconciler {
	return &Reconciler{gw: gw, lab: lab}
}

// Level 对应前端 toast 的三档：warning 专指“本地成功、远端失败”。
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// RequestOutcome 单个请求的处理结果。Remote 与 Local 互斥。
type RequestOutcome struct {
	RequestID string  `json:"requestId"`
	Remote    bool    `json:"remote"`
	Local     bool    `json:"local"`
	Updated   int     `json:"updated"`
	Skipped   []int64 `json:"skipped,omitempty"`
	NotFound  bool    `json:"notFound,omitempty"`
	Err       string  `json:"error,omitempty"`
}

func (o RequestOutcome) Level() Level {
	switch {
	case o.Remote:
		return LevelSuccess
	case o.Local:
		return LevelWarning
	default:
		return LevelError
	}
}

// BatchOutcome 批量结果。聚合口径：全部远端成功才算 success，
// 有本地补偿降为 warning，有彻底失败则 error。
type BatchOutcome struct {
	Requests []RequestOutcome `json:"requests"`
}

func (b BatchOutcome) Level() Level {
	level := LevelSuccess
	for _, r := range b.Requests {
		switch r.Level() {
		case LevelError:
			return LevelError
		case LevelWarning:
			level = LevelWarning
		}
	}
	return level
}

var numericID = regexp.MustCompile(`^\d+$`)

// ResolveRequestID 把对外短码解析成数据库数字 id：
// 先查本地队列缓存，再查上游完整列表；都查不到时原样返回并标记未解析。
func (r *Reconciler) ResolveRequestID(ctx context.Context, identifier string, o gateway.CallOpts) (string, bool) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		// 空 id 不算解析成功
		return id, false
	}
	if numericID.MatchString(id) {
		return id, true
	}

	for _, req := range r.lab.Queue(ctx) {
		if req.RequestID == id && req.ID != 0 {
			return strconv.FormatInt(req.ID, 10), true
		}
	}

	if list, res := r.gw.ListRequests(ctx, "", o); res.OK {
		for _, req := range list {
			if req.RequestID == id && req.ID != 0 {
				return strconv.FormatInt(req.ID, 10), true
			}
		}
	}

	// 未解析：调用方仍可拿原值去试，下游多半 404
	return identifier, false
}

// findRequest 取请求详情：本地队列优先，其次上游。
func (r *Reconciler) findRequest(ctx context.Context, id string, o gateway.CallOpts) *models.BorrowRequest {
	for _, req := range r.lab.Queue(ctx) {
		if strconv.FormatInt(req.ID, 10) == id || req.RequestID == id {
			cp := req
			return &cp
		}
	}
	if req, res := r.gw.GetRequest(ctx, id, o); res.OK {
		return req
	}
	return nil
}

// newLoanID 本地批准件的短编号（原版 generateLoanId 的样子）
func newLoanID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "L" + raw[:6]
}

// RefreshQueue 远端写成功后把本地队列镜像刷新为上游现状：
// 仍有 pending 条目的请求保留，approved/borrowed 条目拆成借出记录。
func (r *Reconciler) RefreshQueue(ctx context.Context, o gateway.CallOpts) bool {
	list, res := r.gw.ListRequests(ctx, "", o)
	if !res.OK {
		return false
	}
	var normalized []models.BorrowRequest
	for _, req := range list {
		var pending, active []models.RequestItem
		for _, it := range req.Items {
			switch {
			case it.Status == models.StatusPending:
				pending = append(pending, it)
			case it.Status.Active():
				active = append(active, it)
			}
		}
		if len(pending) > 0 {
			cp := req
			cp.Items = pending
			normalized = append(normalized, cp)
		}
		if len(active) > 0 {
			cp := req
			cp.RequestID = req.RequestID
			cp.Items = active
			for i := range cp.Items {
				cp.Items[i].Status = models.StatusBorrowed
			}
			normalized = append(normalized, cp)
		}
	}
	return r.lab.SaveQueue(ctx, normalized) == nil
}
