package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken       string
	DatabaseURL    string
	RedisURL       string // пусто — кэш рейтинга выключен
	AdminIDs       []int64
	StaffChatID    int64 // 0 — заявки рассылаются админам из AdminIDs
	Location       *time.Location
	HTTPAddr       string
	LogLevel       string
	Env            string // dev|prod
	SentryDSN      string
	EmailDomain    string
	RankingRefresh time.Duration // 0 — фоновый пересчёт выключен
	DraftTTL       time.Duration
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Paris")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	var staffChat int64
	if v := strings.TrimSpace(os.Getenv("STAFF_CHAT_ID")); v != "" {
		staffChat, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("STAFF_CHAT_ID: %w", err)
		}
	}

	refresh, err := getDuration("RANKING_REFRESH", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	draftTTL, err := getDuration("DRAFT_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:       mustEnv("BOT_TOKEN"),
		DatabaseURL:    mustEnv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AdminIDs:       adminIDs,
		StaffChatID:    staffChat,
		Location:       loc,
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		EmailDomain:    getenv("EMAIL_DOMAIN", "myges"),
		RankingRefresh: refresh,
		DraftTTL:       draftTTL,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
