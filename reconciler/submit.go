package reconciler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"phylab_inventory_tool/gateway"
	"phylab_inventory_tool/models"
)

// newRequestCode 学生请求的对外短码
func newRequestCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:7]
}

// Submit 购物车提交：新请求全部条目 pending。远端失败时整条进本地队列。
func (r *Reconciler) Submit(ctx context.Context, req models.BorrowRequest, o gateway.CallOpts) (models.BorrowRequest, RequestOutcome) {
	if req.RequestID == "" {
		req.RequestID = newRequestCode()
	}
	for i := range req.Items {
		req.Items[i].Status = models.StatusPending
	}

	payload := gateway.CreateRequestPayload{
		RequestID:   req.RequestID,
		StudentName: req.StudentName,
		StudentID:   req.StudentID,
		Email:       req.Email,
		TeacherName: req.TeacherName,
		Purpose:     req.Purpose,
		BorrowDate:  req.BorrowDate,
		ReturnDate:  req.ReturnDate,
		Status:      string(models.StatusPending),
	}
	for _, it := range req.Items {
		payload.Items = append(payload.Items, gateway.CreateItemPayload{
			ItemName:  it.Name,
			ItemKey:   it.ItemKey,
			Quantity:  it.Quantity,
			ItemImage: it.Image,
		})
	}

	oc := RequestOutcome{RequestID: req.RequestID}
	if res := r.gw.CreateRequest(ctx, payload, o); res.OK {
		oc.Remote = true
		return req, oc
	} else {
		oc.Err = res.Err
	}

	req.Timestamp = time.Now().Format(localTimeLayout)
	queue := r.lab.Queue(ctx)
	queue = append(queue, req)
	if err := r.lab.SaveQueue(ctx, queue); err == nil {
		oc.Local = true
		r.reserveStock(ctx, req)
	}
	return req, oc
}

// reserveStock 本地入队即预留：库存镜像按条目数量扣减，
// 之后的拒绝/归还回补才有东西可回。镜像里没有的物品不动。
func (r *Reconciler) reserveStock(ctx context.Context, req models.BorrowRequest) {
	for _, it := range req.Items {
		key := it.ItemKey
		if key == "" {
			key = it.Name
		}
		if key == "" {
			continue
		}
		if _, ok := r.lab.Stock(ctx, key); !ok {
			continue
		}
		if err := r.lab.AdjustStock(ctx, key, -it.Quantity); err != nil {
			log.Printf("reconciler: reserve stock %s: %v", key, err)
		}
	}
}
