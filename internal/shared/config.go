package shared

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	CardBaseURL   string
	FeedbackHosts []string
	WBDest        string
	WBLocale      string
	WBRPS         int

	ReviewLimit int
	CardTTL     time.Duration
	ReviewsTTL  time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int

	Workers       int
	TrackArticles []int64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/antifake?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		CardBaseURL:   env("WB_CARD_BASE_URL", "https://card.wb.ru/cards/v4/detail"),
		FeedbackHosts: splitList(env("WB_FEEDBACK_HOSTS", "https://feedbacks1.wb.ru,https://feedbacks2.wb.ru")),
		WBDest:        env("WB_DEST", "-1216601,-115136,-421732,123585595"),
		WBLocale:      env("WB_LOCALE", "ru"),
		WBRPS:         atoi("WB_RPS", 4),

		ReviewLimit: atoi("REVIEW_LIMIT", 120),
		CardTTL:     time.Duration(atoi("CARD_TTL_SECONDS", 600)) * time.Second,
		ReviewsTTL:  time.Duration(atoi("REVIEWS_TTL_SECONDS", 3600)) * time.Second,

		RateLimitWindow: time.Duration(atoi("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		RateLimitMax:    atoi("RATE_LIMIT_MAX", 6),

		Workers:       atoi("TRACK_WORKERS", 8),
		TrackArticles: splitArticles(env("TRACK_ARTICLES", "")),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitArticles(s string) []int64 {
	var out []int64
	for _, p := range splitList(s) {
		if n, err := strconv.ParseInt(p, 10, 64); err == nil && n > 0 {
			out = append(out, n)
		}
	}
	return out
}
