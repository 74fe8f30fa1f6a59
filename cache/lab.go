package cache

import (
	"context"
	"log"

	"phylab_inventory_tool/models"
)

// Lab 在 Store 之上提供各固定键的类型化读写，并在写入后广播变更。
// 写入纪律沿用原版：整集合读出、内存改、整集合写回，最后写者赢。
type Lab struct {
	store  Store
	notify Notifier
}

func NewLab(store Store, notify Notifier) *Lab {
	return &Lab{store: store, notify: notify}
}

func (l *Lab) Store() Store { return l.store }

func (l *Lab) put(ctx context.Context, key string, val any) error {
	if err := l.store.Put(ctx, key, val); err != nil {
		return err
	}
	if l.notify != nil {
		l.notify.KeyChanged(ctx, key)
	}
	return nil
}

// Queue 本地请求队列（pending + borrowed 都在里面）
func (l *Lab) Queue(ctx context.Context) []models.BorrowRequest {
	var q []models.BorrowRequest
	l.store.Get(ctx, KeyRequestQueue, &q)
	return q
}

func (l *Lab) SaveQueue(ctx context.Context, q []models.BorrowRequest) error {
	return l.put(ctx, KeyRequestQueue, q)
}

func (l *Lab) History(ctx context.Context) []models.BorrowRequest {
	var h []models.BorrowRequest
	l.store.Get(ctx, KeyHistory, &h)
	return h
}

func (l *Lab) AppendHistory(ctx context.Context, rec models.BorrowRequest) error {
	h := l.History(ctx)
	h = append(h, rec)
	return l.put(ctx, KeyHistory, h)
}

// Remarks 键形如 req_<id> / item_<id>
func (l *Lab) Remarks(ctx context.Context) map[string]models.Remark {
	m := map[string]models.Remark{}
	l.store.Get(ctx, KeyRemarks, &m)
	return m
}

func (l *Lab) SaveRemark(ctx context.Context, key string, r models.Remark) error {
	m := l.Remarks(ctx)
	m[key] = r
	return l.put(ctx, KeyRemarks, m)
}

// Stock 读当前库存，没有记录时返回 (0, false)
func (l *Lab) Stock(ctx context.Context, itemKey string) (int, bool) {
	var n int
	ok := l.store.Get(ctx, StockKey(itemKey), &n)
	return n, ok
}

func (l *Lab) OriginalStock(ctx context.Context, itemKey string) (int, bool) {
	var n int
	ok := l.store.Get(ctx, StockOriginalKey(itemKey), &n)
	return n, ok
}

// SeedStock 首次见到某物品时记下当前值和基线值
func (l *Lab) SeedStock(ctx context.Context, itemKey string, stock int) error {
	if _, ok := l.Stock(ctx, itemKey); !ok {
		if err := l.put(ctx, StockKey(itemKey), stock); err != nil {
			return err
		}
	}
	if _, ok := l.OriginalStock(ctx, itemKey); !ok {
		return l.put(ctx, StockOriginalKey(itemKey), stock)
	}
	return nil
}

// SetStock 写当前库存，夹在 [0, original] 内。基线缺失时先以写入值建立基线。
func (l *Lab) SetStock(ctx context.Context, itemKey string, stock int) error {
	if stock < 0 {
		stock = 0
	}
	orig, ok := l.OriginalStock(ctx, itemKey)
	if !ok {
		orig = stock
		if err := l.put(ctx, StockOriginalKey(itemKey), orig); err != nil {
			return err
		}
	}
	if stock > orig {
		stock = orig
	}
	return l.put(ctx, StockKey(itemKey), stock)
}

// AdjustStock 增减库存（拒绝/归还回补走这里），同样夹取
func (l *Lab) AdjustStock(ctx context.Context, itemKey string, delta int) error {
	cur, _ := l.Stock(ctx, itemKey)
	return l.SetStock(ctx, itemKey, cur+delta)
}

func (l *Lab) Inventory(ctx context.Context) []models.InventoryItem {
	var inv []models.InventoryItem
	l.store.Get(ctx, KeyInventory, &inv)
	return inv
}

// SaveInventory 同步刷新每件物品的库存键与基线键
func (l *Lab) SaveInventory(ctx context.Context, inv []models.InventoryItem) error {
	if err := l.put(ctx, KeyInventory, inv); err != nil {
		return err
	}
	for _, it := range inv {
		if it.ItemKey == "" {
			continue
		}
		if err := l.SeedStock(ctx, it.ItemKey, it.Stock); err != nil {
			log.Printf("cache: seed stock %s: %v", it.ItemKey, err)
		}
		if it.Cabinet != "" {
			if err := l.put(ctx, CabinetKey(it.ItemKey), it.Cabinet); err != nil {
				log.Printf("cache: save cabinet %s: %v", it.ItemKey, err)
			}
		}
	}
	return nil
}

func (l *Lab) ItemDetails(ctx context.Context, itemKey string) (models.ItemDetails, bool) {
	var d models.ItemDetails
	ok := l.store.Get(ctx, ItemDetailsKey(itemKey), &d)
	return d, ok
}

func (l *Lab) SaveItemDetails(ctx context.Context, itemKey string, d models.ItemDetails) error {
	return l.put(ctx, ItemDetailsKey(itemKey), d)
}

func (l *Lab) Reviews(ctx context.Context) []models.Review {
	var rs []models.Review
	l.store.Get(ctx, KeyReviews, &rs)
	return rs
}

func (l *Lab) SaveReviews(ctx context.Context, rs []models.Review) error {
	return l.put(ctx, KeyReviews, rs)
}
