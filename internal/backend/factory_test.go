package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Fatalf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Fatal("sheets is not a data backend")
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "memory,sqlite,supabase" {
		t.Fatalf("GetBackendTypeStrings = %s", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:          "supabase",
		SupabaseURL:          "https://x.supabase.co",
		SupabaseKey:          "key",
		SupabaseAvatarBucket: "avatars",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SupabaseBackend || cfg.SupabaseAvatarBucket != "avatars" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Type: MemoryBackend, AvatarDir: "x"}, false},
		{"memory no avatar dir", Config{Type: MemoryBackend}, true},
		{"sqlite no path", Config{Type: SQLiteBackend, AvatarDir: "x"}, true},
		{"supabase no key", Config{Type: SupabaseBackend, SupabaseURL: "https://x", SupabaseAvatarBucket: "a"}, true},
		{"supabase ok", Config{Type: SupabaseBackend, SupabaseURL: "https://x", SupabaseKey: "k", SupabaseAvatarBucket: "a"}, false},
		{"unknown", Config{Type: "nope"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateLocalBackends(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)

	cases := []Config{
		{Type: MemoryBackend, AvatarDir: filepath.Join(dir, "mem-avatars")},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "f.db"), AvatarDir: filepath.Join(dir, "sql-avatars")},
	}
	for _, cfg := range cases {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(context.Background(), cfg)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			b := res.Backend
			if b.Store == nil || b.Identity == nil || b.Avatars == nil || b.LocalAvatars == nil {
				t.Fatalf("incomplete backend %+v", b)
			}
			if got := b.Avatars.PublicURL("u.png"); got != "/avatars/u.png" {
				t.Fatalf("PublicURL = %q", got)
			}
		})
	}
}
