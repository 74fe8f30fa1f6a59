package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"

	"phylab_inventory_tool/models"
)

// 原版前端里同一字段在多处用不同别名归一化，且各处顺序不一致。
// 这里收敛成一张别名表，只做一次。
var requestAliases = map[string][]string{
	"requestId":    {"request_id", "requestId"},
	"studentName":  {"student_name", "studentName", "full_name", "fullname"},
	"studentId":    {"student_id", "studentId", "id_number"},
	"email":        {"email", "student_email"},
	"phone":        {"student_phone", "phone", "contact", "student_phone_number"},
	"department":   {"department", "student_department"},
	"teacherName":  {"teacher_name", "teacherName"},
	"teacherEmail": {"teacher_email", "teacher_email_address"},
	"teacherPhone": {"teacher_phone", "teacher_phone_number"},
	"purpose":      {"purpose", "reason"},
	"borrowDate":   {"borrow_date", "borrowDate"},
	"returnDate":   {"return_date", "returnDate"},
	"adminRemark":  {"admin_remark", "adminRemark"},
	"remarkType":   {"remark_type", "admin_remark_type"},
	"timestamp":    {"created_at", "timestamp"},
}

var itemAliases = map[string][]string{
	"name":            {"item_name", "name"},
	"itemKey":         {"item_key", "itemKey"},
	"image":           {"item_image", "image"},
	"description":     {"description", "item_description", "item_desc"},
	"adminRemark":     {"admin_remark", "remark"},
	"remarkType":      {"remark_type"},
	"remarkCreatedAt": {"remark_created_at"},
}

func pickString(m map[string]any, field string, aliases map[string][]string) string {
	for _, k := range aliases[field] {
		if v, ok := m[k]; ok && v != nil {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case float64:
				return strconv.FormatFloat(s, 'f', -1, 64)
			}
		}
	}
	return ""
}

func pickInt64(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

func pickInt(m map[string]any, def int, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return def
}

// NormalizeRequest 把上游的一条请求记录映射为内部模型。
// 缺字段一律退化为零值，不报错（上游形状不受我们控制）。
func NormalizeRequest(m map[string]any) models.BorrowRequest {
	req := models.BorrowRequest{
		ID:           pickInt64(m, "id"),
		RequestID:    pickString(m, "requestId", requestAliases),
		StudentName:  pickString(m, "studentName", requestAliases),
		StudentID:    pickString(m, "studentId", requestAliases),
		Email:        pickString(m, "email", requestAliases),
		Phone:        pickString(m, "phone", requestAliases),
		Department:   pickString(m, "department", requestAliases),
		TeacherName:  pickString(m, "teacherName", requestAliases),
		TeacherEmail: pickString(m, "teacherEmail", requestAliases),
		TeacherPhone: pickString(m, "teacherPhone", requestAliases),
		Purpose:      pickString(m, "purpose", requestAliases),
		BorrowDate:   pickString(m, "borrowDate", requestAliases),
		ReturnDate:   pickString(m, "returnDate", requestAliases),
		AdminRemark:  pickString(m, "adminRemark", requestAliases),
		RemarkType:   models.RemarkType(pickString(m, "remarkType", requestAliases)),
		Timestamp:    pickString(m, "timestamp", requestAliases),
	}
	if req.RequestID == "" && req.ID != 0 {
		req.RequestID = fmt.Sprintf("%d", req.ID)
	}
	if items, ok := m["items"].([]any); ok {
		for _, raw := range items {
			im, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			req.Items = append(req.Items, NormalizeItem(im))
		}
	}
	return req
}

func NormalizeItem(m map[string]any) models.RequestItem {
	status := models.ItemStatus(pickString(m, "status", map[string][]string{"status": {"status"}}))
	if !status.Valid() {
		status = models.StatusPending
	}
	return models.RequestItem{
		ID:              pickInt64(m, "id"),
		Name:            pickString(m, "name", itemAliases),
		ItemKey:         pickString(m, "itemKey", itemAliases),
		Quantity:        pickInt(m, 1, "quantity"),
		Image:           pickString(m, "image", itemAliases),
		Status:          status,
		Description:     pickString(m, "description", itemAliases),
		AdminRemark:     pickString(m, "adminRemark", itemAliases),
		RemarkType:      models.RemarkType(pickString(m, "remarkType", itemAliases)),
		RemarkCreatedAt: pickString(m, "remarkCreatedAt", itemAliases),
	}
}

// NormalizeRequestList 接受顶层数组或 {results: []} 两种形状。
func NormalizeRequestList(data json.RawMessage) []models.BorrowRequest {
	var list []map[string]any
	if err := json.Unmarshal(data, &list); err != nil {
		var wrapped struct {
			Results []map[string]any `json:"results"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil
		}
		list = wrapped.Results
	}
	out := make([]models.BorrowRequest, 0, len(list))
	for _, m := range list {
		out = append(out, NormalizeRequest(m))
	}
	return out
}

// NormalizeInventory 上游库存记录 -> 内部模型
func NormalizeInventory(m map[string]any) models.InventoryItem {
	stock := pickInt(m, 0, "stock")
	return models.InventoryItem{
		ID:            pickInt64(m, "id"),
		ItemKey:       pickString(m, "itemKey", itemAliases),
		Name:          pickString(m, "name", map[string][]string{"name": {"name", "item_name"}}),
		Category:      str(m["category"]),
		Cabinet:       str(m["cabinet"]),
		Stock:         stock,
		OriginalStock: stock,
		Type:          str(m["type"]),
		Use:           str(m["use"]),
		Description:   str(m["description"]),
		Image:         firstStr(m["image_url"], m["image"]),
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func firstStr(vals ...any) string {
	for _, v := range vals {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}
