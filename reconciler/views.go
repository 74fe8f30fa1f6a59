package reconciler

import (
	"context"
	"strconv"

	"phylab_inventory_tool/gateway"
	"phylab_inventory_tool/models"
)

// 各页面视图：上游为准，打不通才读本地缓存。返回值第二项标记数据来源。

// Pending 审批页：只留还有 pending 条目的请求，条目也过滤到 pending。
func (r *Reconciler) Pending(ctx context.Context, o gateway.CallOpts) ([]models.BorrowRequest, bool) {
	list, res := r.gw.ListRequests(ctx, models.StatusPending, o)
	remote := res.OK
	if !remote {
		list = r.lab.Queue(ctx)
	}
	var out []models.BorrowRequest
	for _, req := range list {
		var pending []models.RequestItem
		for _, it := range req.Items {
			if it.Status == models.StatusPending {
				pending = append(pending, it)
			}
		}
		if len(pending) > 0 {
			cp := req
			cp.Items = pending
			out = append(out, cp)
		}
	}
	return out, remote
}

// ActiveLoans 归还页：borrowed 请求，去掉已归还条目。
func (r *Reconciler) ActiveLoans(ctx context.Context, o gateway.CallOpts) ([]models.BorrowRequest, bool) {
	list, res := r.gw.ListRequests(ctx, models.StatusBorrowed, o)
	remote := res.OK
	if !remote {
		for _, req := range r.lab.Queue(ctx) {
			if req.Status() == models.StatusBorrowed {
				list = append(list, req)
			}
		}
	}
	var out []models.BorrowRequest
	for _, req := range list {
		var active []models.RequestItem
		for _, it := range req.Items {
			if it.Status != models.StatusReturned && it.Status != models.StatusRejected {
				active = append(active, it)
			}
		}
		if len(active) > 0 {
			cp := req
			cp.Items = active
			out = append(out, cp)
		}
	}
	return out, remote
}

// HistoryView 历史页：上游 history 端点（带 status=returned 兜底），
// 并把离线期间本地归档、上游还没有的记录合并进来；上游失败只读本地。
func (r *Reconciler) HistoryView(ctx context.Context, o gateway.CallOpts) ([]models.BorrowRequest, bool) {
	local := r.lab.History(ctx)
	list, res := r.gw.History(ctx, o)
	if !res.OK {
		return local, false
	}
	seen := map[string]bool{}
	for _, req := range list {
		seen[historyKey(req)] = true
	}
	for _, req := range local {
		if !seen[historyKey(req)] {
			list = append(list, req)
		}
	}
	return list, true
}

// historyKey 去重口径：本地借出记录按 LoanID，其余按短码/数字 id。
func historyKey(req models.BorrowRequest) string {
	if req.LoanID != "" {
		return req.LoanID
	}
	if req.RequestID != "" {
		return req.RequestID
	}
	return strconv.FormatInt(req.ID, 10)
}

// Detail 单条请求：上游优先，其次本地队列和历史。
func (r *Reconciler) Detail(ctx context.Context, id string, o gateway.CallOpts) *models.BorrowRequest {
	resolved, _ := r.ResolveRequestID(ctx, id, o)
	if req, res := r.gw.GetRequest(ctx, resolved, o); res.OK {
		return req
	}
	if req := r.findLocal(ctx, id); req != nil {
		return req
	}
	return nil
}

func (r *Reconciler) findLocal(ctx context.Context, id string) *models.BorrowRequest {
	pools := [][]models.BorrowRequest{r.lab.Queue(ctx), r.lab.History(ctx)}
	for _, pool := range pools {
		for _, req := range pool {
			if req.RequestID == id || req.LoanID == id || intIDMatch(req.ID, id) {
				cp := req
				return &cp
			}
		}
	}
	return nil
}

func intIDMatch(id int64, s string) bool {
	return id != 0 && s == strconv.FormatInt(id, 10)
}
