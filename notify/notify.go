// notify 用 redis pub/sub 替代浏览器的 storage 事件：
// 缓存键变更后广播出去，别的实例/页签收到后自行刷新。
package notify

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const Channel = "phylab:cache:changed"

type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher { return &Publisher{rdb: rdb} }

func (p *Publisher) KeyChanged(ctx context.Context, key string) {
	if p == nil || p.rdb == nil {
		return
	}
	// 广播失败不影响主流程
	if err := p.rdb.Publish(ctx, Channel, key).Err(); err != nil {
		log.Printf("notify: publish %s: %v", key, err)
	}
}

// Subscribe 起一个 goroutine 消费变更键，ctx 取消后退出。
func Subscribe(ctx context.Context, rdb *redis.Client, fn func(key string)) {
	sub := rdb.Subscribe(ctx, Channel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(msg.Payload)
			}
		}
	}()
}
