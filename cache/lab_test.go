package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"phylab_inventory_tool/models"
)

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	store, err := OpenBadger("") // 内存模式
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewLab(store, nil)
}

func TestGetMissingDegradesToEmpty(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	require.Empty(t, lab.Queue(ctx))
	require.Empty(t, lab.History(ctx))
	require.Empty(t, lab.Remarks(ctx))
	require.Empty(t, lab.Inventory(ctx))
}

func TestGetCorruptDegradesToEmpty(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	// 坏 JSON：直接写个非数组值进去
	require.NoError(t, lab.Store().Put(ctx, KeyRequestQueue, "not a list"))
	require.Empty(t, lab.Queue(ctx))
}

func TestQueueRoundTrip(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	q := []models.BorrowRequest{{ID: 1, RequestID: "AB12CDE", Items: []models.RequestItem{
		{ID: 5, Name: "Multimeter", Quantity: 2, Status: models.StatusPending},
	}}}
	require.NoError(t, lab.SaveQueue(ctx, q))

	got := lab.Queue(ctx)
	require.Len(t, got, 1)
	require.Equal(t, "AB12CDE", got[0].RequestID)
	require.Equal(t, models.StatusPending, got[0].Items[0].Status)
}

func TestStockClampUpperBound(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	require.NoError(t, lab.SeedStock(ctx, "multimeter", 10))

	// 回补超过基线要被夹回 original
	require.NoError(t, lab.AdjustStock(ctx, "multimeter", 5))
	cur, ok := lab.Stock(ctx, "multimeter")
	require.True(t, ok)
	require.Equal(t, 10, cur)

	orig, ok := lab.OriginalStock(ctx, "multimeter")
	require.True(t, ok)
	require.Equal(t, 10, orig)
}

func TestStockClampLowerBound(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	require.NoError(t, lab.SeedStock(ctx, "caliper", 3))
	require.NoError(t, lab.AdjustStock(ctx, "caliper", -5))
	cur, _ := lab.Stock(ctx, "caliper")
	require.Equal(t, 0, cur)
}

func TestSetStockNegativeWithoutBaseline(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	// 没有基线时负数写入不能把基线建成负数
	require.NoError(t, lab.SetStock(ctx, "prism", -3))
	cur, _ := lab.Stock(ctx, "prism")
	require.Equal(t, 0, cur)
	orig, _ := lab.OriginalStock(ctx, "prism")
	require.Equal(t, 0, orig)
}

func TestStockRejectRestoreRoundTrip(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	require.NoError(t, lab.SeedStock(ctx, "oscilloscope", 10))
	// 预留 2（借出）再拒绝回补 2，回到原值
	require.NoError(t, lab.AdjustStock(ctx, "oscilloscope", -2))
	require.NoError(t, lab.AdjustStock(ctx, "oscilloscope", 2))
	cur, _ := lab.Stock(ctx, "oscilloscope")
	require.Equal(t, 10, cur)
}

func TestSeedStockDoesNotOverwrite(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	require.NoError(t, lab.SeedStock(ctx, "prism", 10))
	require.NoError(t, lab.AdjustStock(ctx, "prism", -4))
	// 再次 seed 不应覆盖当前值或基线
	require.NoError(t, lab.SeedStock(ctx, "prism", 99))
	cur, _ := lab.Stock(ctx, "prism")
	require.Equal(t, 6, cur)
	orig, _ := lab.OriginalStock(ctx, "prism")
	require.Equal(t, 10, orig)
}

func TestSaveInventorySeedsStock(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	inv := []models.InventoryItem{
		{ID: 1, ItemKey: "multimeter", Name: "Multimeter", Stock: 7, Cabinet: "C1"},
		{ID: 2, Name: "no key"}, // 缺 key 的跳过
	}
	require.NoError(t, lab.SaveInventory(ctx, inv))

	cur, ok := lab.Stock(ctx, "multimeter")
	require.True(t, ok)
	require.Equal(t, 7, cur)

	var cab string
	require.True(t, lab.Store().Get(ctx, CabinetKey("multimeter"), &cab))
	require.Equal(t, "C1", cab)
}

func TestRemarksAndDetails(t *testing.T) {
	lab := newTestLab(t)
	ctx := context.Background()

	require.NoError(t, lab.SaveRemark(ctx, "item_5", models.Remark{
		Type: models.RemarkDamaged, Text: "cracked display",
	}))
	m := lab.Remarks(ctx)
	require.Equal(t, models.RemarkDamaged, m["item_5"].Type)

	require.NoError(t, lab.SaveItemDetails(ctx, "multimeter", models.ItemDetails{Cabinet: "C3"}))
	d, ok := lab.ItemDetails(ctx, "multimeter")
	require.True(t, ok)
	require.Equal(t, "C3", d.Cabinet)

	_, ok = lab.ItemDetails(ctx, "unknown")
	require.False(t, ok)
}

type recordingNotifier struct{ keys []string }

func (n *recordingNotifier) KeyChanged(_ context.Context, key string) { n.keys = append(n.keys, key) }

func TestWritesNotify(t *testing.T) {
	store, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	n := &recordingNotifier{}
	lab := NewLab(store, n)
	ctx := context.Background()

	require.NoError(t, lab.SaveQueue(ctx, nil))
	require.NoError(t, lab.SetStock(ctx, "multimeter", 4))
	require.Contains(t, n.keys, KeyRequestQueue)
	require.Contains(t, n.keys, StockKey("multimeter"))
}
