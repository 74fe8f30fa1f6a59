package models

// InventoryItem 实验室库存条目（以 item_key 作为业务主键）
type InventoryItem struct {
	ID            int64  `json:"id"`
	ItemKey       string `json:"itemKey"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	Cabinet       string `json:"cabinet,omitempty"`
	Stock         int    `json:"stock"`
	OriginalStock int    `json:"originalStock"`
	Type          string `json:"type,omitempty"`
	Use           string `json:"use,omitempty"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
}

// ItemDetails 管理端可编辑的扩展字段（item_details_<key> 缓存键的值）
type ItemDetails struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Use         string `json:"use,omitempty"`
	Cabinet     string `json:"cabinet,omitempty"`
	Description string `json:"description,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type Review struct {
	ID              int64  `json:"id"`
	ItemName        string `json:"itemName"`
	Comment         string `json:"comment,omitempty"`
	SubmittedByName string `json:"submittedByName,omitempty"`
	SubmittedByMail string `json:"submittedByEmail,omitempty"`
	Image           string `json:"image,omitempty"`
	Resolved        bool   `json:"resolved"`
	CreatedAt       string `json:"createdAt,omitempty"`
}
