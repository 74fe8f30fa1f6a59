package reconciler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"phylab_inventory_tool/gateway"
	"phylab_inventory_tool/models"
)

const localTimeLayout = "2006-01-02 15:04:05"

// Return 把某请求里的一个条目标记归还：远端成功后归档到历史并回补
// 本地库存镜像；远端失败则完全走本地队列补偿。
func (r *Reconciler) Return(ctx context.Context, requestID string, itemID int64, o gateway.CallOpts) RequestOutcome {
	oc := RequestOutcome{RequestID: requestID}

	resolved, found := r.ResolveRequestID(ctx, requestID, o)
	oc.NotFound = !found

	_, gres := r.gw.UpdateItemStatuses(ctx, resolved, []gateway.ItemUpdate{
		{ID: itemID, Status: string(models.StatusReturned)},
	}, o)

	if gres.OK {
		oc.Remote = true
		oc.Updated = 1
		r.archiveFromUpstream(ctx, resolved, itemID, o)
		r.RefreshQueue(ctx, o)
		return oc
	}

	oc.Err = gres.Err
	oc.Local = r.returnLocal(ctx, requestID, itemID)
	if oc.Local {
		oc.Updated = 1
	}
	return oc
}

// archiveFromUpstream 远端归还成功后，用上游数据建历史条目并回补库存镜像。
func (r *Reconciler) archiveFromUpstream(ctx context.Context, resolved string, itemID int64, o gateway.CallOpts) {
	req, res := r.gw.GetRequest(ctx, resolved, o)
	if !res.OK || req == nil {
		return
	}
	it := req.FindItem(itemID)
	if it == nil {
		return
	}

	key := it.ItemKey
	if key == "" {
		key = it.Name
	}
	if err := r.lab.AdjustStock(ctx, key, it.Quantity); err != nil {
		return
	}

	archived := *it
	archived.Status = models.StatusReturned
	entry := *req
	entry.Items = []models.RequestItem{archived}
	entry.ActualReturnDate = time.Now().Format(localTimeLayout)
	_ = r.lab.AppendHistory(ctx, entry)
}

// returnLocal 远端不可达时的本地归还：回补库存、标记条目、归档。
func (r *Reconciler) returnLocal(ctx context.Context, requestID string, itemID int64) bool {
	if requestID == "" {
		return false
	}
	queue := r.lab.Queue(ctx)
	idx := -1
	for i, q := range queue {
		if strconv.FormatInt(q.ID, 10) == requestID || q.RequestID == requestID || q.LoanID == requestID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	req := &queue[idx]
	it := req.FindItem(itemID)
	if it == nil && len(req.Items) > 0 {
		// 原版只有单条目借出记录，回退时拿第一条
		it = &req.Items[0]
	}
	if it == nil || !it.Status.CanTransition(models.StatusReturned) {
		return false
	}

	key := it.ItemKey
	if key == "" {
		key = it.Name
	}
	if err := r.lab.AdjustStock(ctx, key, it.Quantity); err != nil {
		return false
	}
	it.Status = models.StatusReturned

	// 条目全部归还后整条记录移入历史
	allReturned := true
	for _, item := range req.Items {
		if item.Status != models.StatusReturned {
			allReturned = false
			break
		}
	}
	if allReturned {
		entry := *req
		entry.ActualReturnDate = time.Now().Format(localTimeLayout)
		if err := r.lab.AppendHistory(ctx, entry); err != nil {
			return false
		}
		queue = append(queue[:idx], queue[idx+1:]...)
	}
	return r.lab.SaveQueue(ctx, queue) == nil
}

// SaveRemark 备注不是状态流转，但复用同一个条目更新端点。
// id 缺失或上游一条都没更新（updated_count=0）都算失败上报，不静默跳过。
func (r *Reconciler) SaveRemark(ctx context.Context, requestID string, itemID int64, remark models.Remark, o gateway.CallOpts) RequestOutcome {
	oc := RequestOutcome{RequestID: requestID}
	if remark.Empty() {
		oc.Err = "empty remark"
		return oc
	}
	if requestID == "" || itemID == 0 {
		oc.Err = "missing request or item id"
		return oc
	}

	resolved, found := r.ResolveRequestID(ctx, requestID, o)
	oc.NotFound = !found

	text := remark.Text
	res, gres := r.gw.UpdateItemStatuses(ctx, resolved, []gateway.ItemUpdate{{
		ID:              itemID,
		AdminRemark:     &text,
		RemarkType:      string(remark.Type),
		RemarkCreatedAt: time.Now().UTC().Format(time.RFC3339),
	}}, o)

	if !gres.OK {
		oc.Err = gres.Err
		return oc
	}
	if res.UpdatedCount == 0 {
		// 条目不属于这个请求
		oc.Skipped = res.SkippedIDs
		oc.Err = "item does not belong to request"
		return oc
	}

	oc.Remote = true
	oc.Updated = res.UpdatedCount
	// 本地镜像只在远端成功后更新
	now := time.Now().UTC()
	remark.CreatedAt = &now
	_ = r.lab.SaveRemark(ctx, fmt.Sprintf("item_%d", itemID), remark)
	return oc
}
