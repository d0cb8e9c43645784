package config

import (
	"testing"
	"time"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 42, 7;13 ")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(ids) != 3 || ids[0] != 42 || ids[1] != 7 || ids[2] != 13 {
		t.Fatalf("получили %v", ids)
	}

	if _, err := parseIDs("42,abc"); err == nil {
		t.Fatal("ожидали ошибку для нечислового id")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost/sessionbot")
		t.Setenv("RANKING_REFRESH", "")
		t.Setenv("STAFF_CHAT_ID", "")
		t.Setenv("EMAIL_DOMAIN", "")

		cfg, err := Load()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.RankingRefresh != 30*time.Minute {
			t.Fatalf("RankingRefresh = %v", cfg.RankingRefresh)
		}
		if cfg.EmailDomain != "myges" {
			t.Fatalf("EmailDomain = %q", cfg.EmailDomain)
		}
		if cfg.StaffChatID != 0 {
			t.Fatalf("StaffChatID = %d", cfg.StaffChatID)
		}
	})

	t.Run("bad_duration", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost/sessionbot")
		t.Setenv("RANKING_REFRESH", "soon")
		if _, err := Load(); err == nil {
			t.Fatal("ожидали ошибку разбора RANKING_REFRESH")
		}
	})

	t.Run("missing_token_panics", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("DATABASE_URL", "postgres://localhost/sessionbot")
		t.Setenv("RANKING_REFRESH", "")
		defer func() {
			if recover() == nil {
				t.Fatal("ожидали панику без BOT_TOKEN")
			}
		}()
		_, _ = Load()
	})
}
