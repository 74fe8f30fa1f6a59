package reconciler

import (
	"context"
	"strconv"

	"phylab_inventory_tool/gateway"
	"phylab_inventory_tool/models"
)

// Action 管理员勾选的一条 (请求, 条目, 数量)
type Action struct {
	RequestID string `json:"requestId"`
	ItemID    int64  `json:"itemId"`
	Quantity  int    `json:"quantity"`
}

// Approve 批量批准。数量可小于请求量，远端路径由服务器拆分余量，
// 本地回退路径在这里拆出剩余的 pending 条目。
func (r *Reconciler) Approve(ctx context.Context, actions []Action, o gateway.CallOpts) BatchOutcome {
	return r.process(ctx, actions, models.StatusApproved, o)
}

// Reject 批量拒绝，预留数量回补库存。
func (r *Reconciler) Reject(ctx context.Context, actions []Action, o gateway.CallOpts) BatchOutcome {
	return r.process(ctx, actions, models.StatusRejected, o)
}

func (r *Reconciler) process(ctx context.Context, actions []Action, target models.ItemStatus, o gateway.CallOpts) BatchOutcome {
	// 按请求分组，每个请求一次网络调用
	grouped := map[string][]Action{}
	var order []string
	for _, a := range actions {
		if _, seen := grouped[a.RequestID]; !seen {
			order = append(order, a.RequestID)
		}
		grouped[a.RequestID] = append(grouped[a.RequestID], a)
	}

	var out BatchOutcome
	anyRemote := false
	for _, reqID := range order {
		oc := r.processRequest(ctx, reqID, grouped[reqID], target, o)
		if oc.Remote {
			anyRemote = true
		}
		out.Requests = append(out.Requests, oc)
	}

	// 有远端写成功就从上游刷新本地镜像，借出记录随之出现
	if anyRemote {
		r.RefreshQueue(ctx, o)
	}
	return out
}

func (r *Reconciler) processRequest(ctx context.Context, reqID string, acts []Action, target models.ItemStatus, o gateway.CallOpts) RequestOutcome {
	oc := RequestOutcome{RequestID: reqID}

	resolved, found := r.ResolveRequestID(ctx, reqID, o)
	oc.NotFound = !found

	req := r.findRequest(ctx, resolved, o)

	var updates []gateway.ItemUpdate
	for _, a := range acts {
		qty := a.Quantity
		if req != nil {
			it := req.FindItem(a.ItemID)
			if it == nil || !it.Status.CanTransition(target) {
				oc.Skipped = append(oc.Skipped, a.ItemID)
				continue
			}
			if qty > it.Quantity {
				qty = it.Quantity
			}
		}
		if qty <= 0 {
			// 夹到零就是无操作
			oc.Skipped = append(oc.Skipped, a.ItemID)
			continue
		}
		q := qty
		updates = append(updates, gateway.ItemUpdate{ID: a.ItemID, Status: string(target), Quantity: &q})
	}
	if len(updates) == 0 {
		oc.Err = "no eligible items"
		return oc
	}

	res, gres := r.gw.UpdateItemStatuses(ctx, resolved, updates, o)
	if gres.OK {
		oc.Remote = true
		oc.Updated = res.UpdatedCount
		oc.Skipped = append(oc.Skipped, res.SkippedIDs...)
		return oc
	}

	// 远端失败：本地补偿
	oc.Err = gres.Err
	oc.Local = r.applyLocal(ctx, reqID, updates, target)
	if oc.Local {
		oc.Updated = len(updates)
	}
	return oc
}

// applyLocal 把一组更新落到本地队列：批准拆出借出记录，
// 拒绝把预留数量回补库存；被动过的条目削减余量，清零即移除。
func (r *Reconciler) applyLocal(ctx context.Context, reqID string, updates []gateway.ItemUpdate, target models.ItemStatus) bool {
	if reqID == "" {
		return false
	}
	queue := r.lab.Queue(ctx)
	idx := -1
	for i, q := range queue {
		if strconv.FormatInt(q.ID, 10) == reqID || q.RequestID == reqID || q.LoanID == reqID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	req := &queue[idx]
	for _, up := range updates {
		it := req.FindItem(up.ID)
		if it == nil || !it.Status.CanTransition(target) {
			continue
		}
		qty := it.Quantity
		if up.Quantity != nil && *up.Quantity < qty {
			qty = *up.Quantity
		}
		if qty <= 0 {
			continue
		}

		switch target {
		case models.StatusApproved, models.StatusBorrowed:
			borrowed := *it
			borrowed.Quantity = qty
			borrowed.Status = models.StatusBorrowed
			entry := *req
			entry.LoanID = newLoanID()
			entry.Items = []models.RequestItem{borrowed}
			queue = append(queue, entry)
			req = &queue[idx] // append 可能重分配
		case models.StatusRejected:
			key := it.ItemKey
			if key == "" {
				key = it.Name
			}
			if err := r.lab.AdjustStock(ctx, key, qty); err != nil {
				return false
			}
		}

		it.Quantity -= qty
		if it.Quantity <= 0 {
			req.Items = removeItem(req.Items, up.ID)
		}
	}

	if len(req.Items) == 0 {
		queue = append(queue[:idx], queue[idx+1:]...)
	}
	return r.lab.SaveQueue(ctx, queue) == nil
}

func removeItem(items []models.RequestItem, id int64) []models.RequestItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
