// cache 是离线回退存储：网关打不通时生命周期动作落到这里。
// 语义对齐原版浏览器 localStorage：固定字符串键，JSON 值，
// 读不到/解析失败一律退化为空集合。
package cache

import "context"

// 固定键，与原版前端保持一致
const (
	KeyRequestQueue = "phyLab_RequestQueue"
	KeyHistory      = "phyLab_History"
	KeyRemarks      = "phyLab_Remarks"
	KeyInventory    = "phyLab_AdminInventory"
	KeyReviews      = "phyLab_UserReviews"
)

func StockKey(itemKey string) string         { return "stock_" + itemKey }
func StockOriginalKey(itemKey string) string { return "stock_original_" + itemKey }
func CabinetKey(itemKey string) string       { return "cabinet_" + itemKey }
func ItemDetailsKey(itemKey string) string   { return "item_details_" + itemKey }

// Store 是键值后端。Get 只在成功取到并解析出值时返回 true；
// 缺键、坏值、后端故障都按“没有”处理（调用方拿到零值集合）。
type Store interface {
	Get(ctx context.Context, key string, out any) bool
	Put(ctx context.Context, key string, val any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Notifier 对应浏览器的 storage 事件：每次写入广播变更的键。
type Notifier interface {
	KeyChanged(ctx context.Context, key string)
}
