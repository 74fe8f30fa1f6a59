package controllers

import (
	"io"
	"net/http"
	"strconv"

	"phylab_inventory_tool/app"
	"phylab_inventory_tool/cache"
	"phylab_inventory_tool/models"
	"phylab_inventory_tool/reconciler"
)

type InventoryController struct{ *Srv }

func NewInventoryController(s *Srv) *InventoryController { return &InventoryController{Srv: s} }

// List 上游为准并刷新本地镜像；打不通时读镜像。
// 管理端本地编辑过的扩展字段（item_details_<key>）覆盖在结果上。
func (ic *InventoryController) List(c *app.Ctx) {
	ctx := c.Request.Context()
	opts := app.OptsFrom(c)

	items, res := ic.App.Gateway.ListInventory(ctx, opts)
	remote := res.OK
	if remote {
		_ = ic.App.Cache.SaveInventory(ctx, items)
	} else {
		items = ic.App.Cache.Inventory(ctx)
	}

	for i := range items {
		key := items[i].ItemKey
		if key == "" {
			continue
		}
		if d, ok := ic.App.Cache.ItemDetails(ctx, key); ok {
			if d.Type != "" {
				items[i].Type = d.Type
			}
			if d.Use != "" {
				items[i].Use = d.Use
			}
			if d.Cabinet != "" {
				items[i].Cabinet = d.Cabinet
			}
			if d.Description != "" {
				items[i].Description = d.Description
			}
		}
		if cur, ok := ic.App.Cache.Stock(ctx, key); ok {
			items[i].Stock = cur
		}
		if orig, ok := ic.App.Cache.OriginalStock(ctx, key); ok {
			items[i].OriginalStock = orig
		}
	}

	c.JSON(http.StatusOK, app.H{"ok": true, "remote": remote, "items": items})
}

// Create 带图片的 multipart 原样透传给上游
func (ic *InventoryController) Create(c *app.Ctx) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	res := ic.App.Gateway.CreateInventory(c.Request.Context(), c.ContentType(), body, app.OptsFrom(c))
	if !res.OK {
		c.JSON(http.StatusBadGateway, app.H{"ok": false, "level": reconciler.LevelError, "error": res.Err})
		return
	}
	c.Data(http.StatusCreated, "application/json", res.Data)
}

// Patch 扩展字段编辑：远端尝试 + 本地 item_details 镜像
func (ic *InventoryController) Patch(c *app.Ctx) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad inventory id"})
		return
	}
	var in struct {
		ItemKey     string `json:"itemKey"`
		Name        string `json:"name"`
		Type        string `json:"type"`
		Use         string `json:"use"`
		Cabinet     string `json:"cabinet"`
		Description string `json:"description"`
		UpdatedAt   string `json:"updatedAt"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	res := ic.App.Gateway.PatchInventory(ctx, id, map[string]any{
		"name": in.Name, "type": in.Type, "use": in.Use,
		"cabinet": in.Cabinet, "description": in.Description,
	}, app.OptsFrom(c))

	if in.ItemKey != "" {
		_ = ic.App.Cache.SaveItemDetails(ctx, in.ItemKey, models.ItemDetails{
			Name: in.Name, Type: in.Type, Use: in.Use,
			Cabinet: in.Cabinet, Description: in.Description,
			UpdatedAt: in.UpdatedAt,
		})
	}

	level := reconciler.LevelSuccess
	if !res.OK {
		// 本地保住了，远端没写上
		level = reconciler.LevelWarning
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "level": level})
}

func (ic *InventoryController) Delete(c *app.Ctx) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad inventory id"})
		return
	}
	res := ic.App.Gateway.DeleteInventory(c.Request.Context(), id, app.OptsFrom(c))
	if !res.OK {
		c.JSON(http.StatusBadGateway, app.H{"ok": false, "level": reconciler.LevelError, "error": res.Err})
		return
	}

	// 同步清理本地镜像和该物品的衍生键
	ctx := c.Request.Context()
	inv := ic.App.Cache.Inventory(ctx)
	kept := inv[:0]
	for _, it := range inv {
		if it.ID == id {
			if key := it.ItemKey; key != "" {
				store := ic.App.Cache.Store()
				_ = store.Delete(ctx, cache.StockKey(key))
				_ = store.Delete(ctx, cache.StockOriginalKey(key))
				_ = store.Delete(ctx, cache.CabinetKey(key))
				_ = store.Delete(ctx, cache.ItemDetailsKey(key))
			}
			continue
		}
		kept = append(kept, it)
	}
	_ = ic.App.Cache.SaveInventory(ctx, kept)

	c.JSON(http.StatusOK, app.H{"ok": true, "level": reconciler.LevelSuccess})
}

// SetStock 库存调整：远端 set_stock + 本地镜像（夹在 [0, original]）
func (ic *InventoryController) SetStock(c *app.Ctx) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad inventory id"})
		return
	}
	var in struct {
		ItemKey string `json:"itemKey"`
		Stock   *int   `json:"stock" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	res := ic.App.Gateway.SetStock(ctx, id, *in.Stock, app.OptsFrom(c))

	level := reconciler.LevelSuccess
	if !res.OK {
		level = reconciler.LevelWarning
	}
	if in.ItemKey != "" {
		if err := ic.App.Cache.SetStock(ctx, in.ItemKey, *in.Stock); err != nil && !res.OK {
			level = reconciler.LevelError
		}
	}
	c.JSON(http.StatusOK, app.H{"ok": level != reconciler.LevelError, "level": level})
}

// Export xlsx 导出透传
func (ic *InventoryController) Export(c *app.Ctx) {
	body, contentType, res := ic.App.Gateway.ExportInventoryXLSX(c.Request.Context(), app.OptsFrom(c))
	if !res.OK {
		c.JSON(http.StatusBadGateway, app.H{"ok": false, "error": res.Err})
		return
	}
	if contentType == "" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	c.Data(http.StatusOK, contentType, body)
}
