// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PostsLimit はllms-full.txtとサイトマップのトピック件数上限ティアを表す。
type PostsLimit string

const (
	// PostsLimitSmall は500件。
	PostsLimitSmall PostsLimit = "small"
	// PostsLimitMedium は2500件。
	PostsLimitMedium PostsLimit = "medium"
	// PostsLimitLarge は5000件。
	PostsLimitLarge PostsLimit = "large"
	// PostsLimitAll は無制限。サイトマップでは5000件のハードキャップに落ちる。
	PostsLimitAll PostsLimit = "all"
)

// Limit はティアに対応する件数を返す。0は無制限を意味する。
// 未知の値はmediumとして扱う。
func (p PostsLimit) Limit() int {
	switch p {
	case PostsLimitSmall:
		return 500
	case PostsLimitMedium:
		return 2500
	case PostsLimitLarge:
		return 5000
	case PostsLimitAll:
		return 0
	default:
		return 2500
	}
}

// SitemapLimit はサイトマップ生成時の件数上限を返す。
// 無制限ティアでもファイル肥大化を防ぐため5000件で打ち切る。
func (p PostsLimit) SitemapLimit() int {
	if limit := p.Limit(); limit > 0 {
		return limit
	}
	return 5000
}

// maxLatestTopics は最新トピックセクションの上限。
const maxLatestTopics = 50

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// サイト設定のグローバルシングルトンは使わず、この値オブジェクトを
// 各アセンブラに明示的に渡す。
type Config struct {
	// Database
	DatabaseURL string

	// Cache（REDIS_ADDRが空の場合はプロセス内メモリキャッシュ）
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Site
	BaseURL         string
	SiteTitle       string
	SiteDescription string
	IntroText       string
	FullDescription string

	// llms.txt生成
	CacheTTL          time.Duration
	PostsLimit        PostsLimit
	MinViews          int
	IncludeExcerpts   bool
	ExcerptLength     int
	LatestTopicsCount int
	TaggingEnabled    bool

	// 追加リソースリンク（空の場合はドキュメントに出力しない）
	AboutURL   string
	FAQURL     string
	TOSURL     string
	PrivacyURL string

	// Server
	ServerPort string

	// Rate Limit（req/min/クライアント）
	RateLimitGeneral int
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.RedisAddr = getEnvString("REDIS_ADDR", "")
	cfg.RedisPassword = getEnvString("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.SiteTitle = getEnvString("SITE_TITLE", "Community Forum")
	cfg.SiteDescription = getEnvString("SITE_DESCRIPTION", "")
	cfg.IntroText = getEnvString("LLMS_INTRO_TEXT", "")
	cfg.FullDescription = getEnvString("LLMS_FULL_DESCRIPTION", "")

	cfg.CacheTTL = time.Duration(getEnvInt("LLMS_CACHE_MINUTES", 60)) * time.Minute
	cfg.PostsLimit = PostsLimit(getEnvString("LLMS_POSTS_LIMIT", string(PostsLimitMedium)))
	cfg.MinViews = getEnvInt("LLMS_MIN_VIEWS", 0)
	cfg.IncludeExcerpts = getEnvBool("LLMS_INCLUDE_EXCERPTS", true)
	cfg.ExcerptLength = getEnvInt("LLMS_EXCERPT_LENGTH", 300)
	cfg.LatestTopicsCount = getEnvInt("LLMS_LATEST_TOPICS_COUNT", 20)
	if cfg.LatestTopicsCount > maxLatestTopics {
		cfg.LatestTopicsCount = maxLatestTopics
	}
	cfg.TaggingEnabled = getEnvBool("TAGGING_ENABLED", true)

	cfg.AboutURL = getEnvString("ABOUT_URL", "")
	cfg.FAQURL = getEnvString("FAQ_URL", "")
	cfg.TOSURL = getEnvString("TOS_URL", "")
	cfg.PrivacyURL = getEnvString("PRIVACY_URL", "")

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 60)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
