package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"phylab_inventory_tool/models"
)

func TestNormalizeRequestFieldAliases(t *testing.T) {
	m := map[string]any{
		"id":            float64(42),
		"request_id":    "LYOQNPL",
		"full_name":     "Ada Lovelace", // student_name 缺席时的别名
		"student_id":    "2021-0001",
		"student_email": "ada@univ.edu",
		"contact":       "0912",
		"teacher_name":  "Dr. Hertz",
		"borrow_date":   "2026-01-10",
		"return_date":   "2026-01-17",
		"items": []any{
			map[string]any{
				"id":         float64(5),
				"item_name":  "Multimeter",
				"item_key":   "multimeter",
				"quantity":   float64(3),
				"item_image": "multimeter.png",
				"status":     "pending",
			},
		},
	}

	req := NormalizeRequest(m)
	require.Equal(t, int64(42), req.ID)
	require.Equal(t, "LYOQNPL", req.RequestID)
	require.Equal(t, "Ada Lovelace", req.StudentName)
	require.Equal(t, "2021-0001", req.StudentID)
	require.Equal(t, "ada@univ.edu", req.Email)
	require.Equal(t, "0912", req.Phone)
	require.Equal(t, "Dr. Hertz", req.TeacherName)

	require.Len(t, req.Items, 1)
	it := req.Items[0]
	require.Equal(t, int64(5), it.ID)
	require.Equal(t, "Multimeter", it.Name)
	require.Equal(t, "multimeter", it.ItemKey)
	require.Equal(t, 3, it.Quantity)
	require.Equal(t, models.StatusPending, it.Status)
}

func TestNormalizeRequestDefaults(t *testing.T) {
	req := NormalizeRequest(map[string]any{"id": float64(7)})
	require.Equal(t, int64(7), req.ID)
	// 短码缺失时退回数字 id
	require.Equal(t, "7", req.RequestID)
	require.Empty(t, req.StudentName)
	require.Empty(t, req.Items)
}

func TestNormalizeItemDefaults(t *testing.T) {
	it := NormalizeItem(map[string]any{"id": float64(9)})
	require.Equal(t, 1, it.Quantity)
	require.Equal(t, models.StatusPending, it.Status)

	// 未知状态也退回 pending
	it = NormalizeItem(map[string]any{"id": float64(9), "status": "weird"})
	require.Equal(t, models.StatusPending, it.Status)
}

func TestNormalizeRequestListShapes(t *testing.T) {
	flat := json.RawMessage(`[{"id":1},{"id":2}]`)
	require.Len(t, NormalizeRequestList(flat), 2)

	wrapped := json.RawMessage(`{"results":[{"id":1}]}`)
	require.Len(t, NormalizeRequestList(wrapped), 1)

	require.Empty(t, NormalizeRequestList(json.RawMessage(`"garbage"`)))
}

func TestNormalizeInventory(t *testing.T) {
	inv := NormalizeInventory(map[string]any{
		"id":        float64(3),
		"item_key":  "vernier_caliper",
		"name":      "Vernier Caliper",
		"category":  "Measurement",
		"cabinet":   "C2",
		"stock":     float64(12),
		"image_url": "http://x/caliper.png",
	})
	require.Equal(t, int64(3), inv.ID)
	require.Equal(t, "vernier_caliper", inv.ItemKey)
	require.Equal(t, 12, inv.Stock)
	require.Equal(t, 12, inv.OriginalStock)
	require.Equal(t, "http://x/caliper.png", inv.Image)
}
