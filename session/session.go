package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdminSession 保存上游的 auth token（对应浏览器 sessionStorage 里的
// auth_token），facade 自己不存任何凭据。
type AdminSession struct {
	Token     string `json:"token"`
	Email     string `json:"email,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(id string) string { return fmt.Sprintf("phylab:sess:%s", id) }

func (s *Store) Create(ctx context.Context, id, token, email string) error {
	now := time.Now()
	b, _ := json.Marshal(AdminSession{
		Token:     token,
		Email:     email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	return s.rdb.Set(ctx, key(id), b, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, id string) (*AdminSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var as AdminSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}
