package app

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"phylab_inventory_tool/cache"
	"phylab_inventory_tool/config"
	"phylab_inventory_tool/gateway"
	"phylab_inventory_tool/notify"
	"phylab_inventory_tool/session"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router  *gin.Engine
	Gateway *gateway.Client
	Cache   *cache.Lab
	RDB     *redis.Client
	Config  Config

	store    cache.Store
	sessions *session.Store
}

// Config 从环境变量读取
type Config struct {
	UpstreamURLs    []string
	UpstreamTimeout time.Duration
	CacheBackend    string
	BadgerDir       string
	RedisAddr       string
	RedisPwd        string
	WebOrigin       string
	SessionTTL      time.Duration
}

func (a *App) Sessions() *session.Store { return a.sessions }

func MustNew() *App {
	cfg := loadConfig()

	// --- 本地缓存后端：默认 badger，已有 postgres 的部署可切换 ---
	var store cache.Store
	var err error
	switch cfg.CacheBackend {
	case "postgres":
		store, err = cache.ConnectPostgres()
	default:
		store, err = cache.OpenBadger(cfg.BadgerDir)
	}
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	lab := cache.NewLab(store, notify.NewPublisher(rdb))
	gw := gateway.New(cfg.UpstreamURLs, cfg.UpstreamTimeout)

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:   r,
		Gateway:  gw,
		Cache:    lab,
		RDB:      rdb,
		Config:   cfg,
		store:    store,
		sessions: session.NewStore(rdb, cfg.SessionTTL),
	}
}

func (a *App) Close() {
	_ = a.store.Close()
	_ = a.RDB.Close()
}

func loadConfig() Config {
	get := config.Get

	// 候选上游：生产地址在前，本地开发地址兜底
	urlsCSV := get("UPSTREAM_URLS",
		"https://phylab-inventory-backend.onrender.com,http://127.0.0.1:8000")
	var urls []string
	for _, u := range strings.Split(urlsCSV, ",") {
		if s := strings.TrimSpace(u); s != "" {
			urls = append(urls, s)
		}
	}

	timeout := 8 * time.Second
	if d, err := time.ParseDuration(get("UPSTREAM_TIMEOUT_SECONDS", "8") + "s"); err == nil {
		timeout = d
	}

	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(get("SESSION_TTL_SECONDS", "86400") + "s"); err == nil {
		ttl = d
	}

	return Config{
		UpstreamURLs:    urls,
		UpstreamTimeout: timeout,
		CacheBackend:    get("CACHE_BACKEND", "badger"),
		BadgerDir:       get("BADGER_DIR", "./data/phylab-cache"),
		RedisAddr:       get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:        os.Getenv("REDIS_PASSWORD"),
		WebOrigin:       get("WEB_ORIGIN", "http://localhost:3000"),
		SessionTTL:      ttl,
	}
}
