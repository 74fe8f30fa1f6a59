package main

import (
	"context"
	"log"
	"os"

	"phylab_inventory_tool/app"
	"phylab_inventory_tool/config"
	"phylab_inventory_tool/notify"
	"phylab_inventory_tool/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	// 其他实例的缓存写入也会广播到这里
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notify.Subscribe(ctx, application.RDB, func(key string) {
		log.Printf("cache changed: %s", key)
	})

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
