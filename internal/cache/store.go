// Package cache はドキュメントキャッシュの保存先を抽象化する。
// 保存先の障害はキャッシュミスとして扱われ、生成処理を失敗させない。
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss はキーが存在しない、または期限切れであることを示す。
var ErrCacheMiss = errors.New("cache: key not found")

// Store はTTL付きキーバリューストアのインターフェース。
type Store interface {
	// Get は指定キーの値を返す。未登録・期限切れはErrCacheMiss。
	Get(ctx context.Context, key string) ([]byte, error)

	// Set は値をTTL付きで保存する。ttl<=0は保存先デフォルトの無期限扱い。
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete は指定キーを削除する。キーが存在しなくてもエラーにしない。
	Delete(ctx context.Context, key string) error
}
