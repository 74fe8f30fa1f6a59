package controllers

import (
	"phylab_inventory_tool/app"
	"phylab_inventory_tool/reconciler"
)

// Srv 控制器共享的依赖
type Srv struct {
	App *app.App
	Rec *reconciler.Reconciler
}

func NewSrv(a *app.App) *Srv {
	return &Srv{App: a, Rec: reconciler.New(a.Gateway, a.Cache)}
}
