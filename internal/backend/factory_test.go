package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"runrate/internal/config"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)

	tests := []struct {
		name      string
		config    Config
		keyPrefix string
		wantRows  bool
	}{
		{"csv", Config{Type: CSVBackend, CSVPath: filepath.Join(dir, "crm_data.csv")}, filepath.Join(dir, "crm_data.csv"), false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "runrate.db")}, "sqlite:", false},
		{"memory seeded", Config{Type: MemoryBackend, SeedDemo: true}, "memory", true},
		{"memory empty", Config{Type: MemoryBackend}, "memory", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(context.Background(), tt.config)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Close()

			if !strings.HasPrefix(res.Reader.Key(), tt.keyPrefix) {
				t.Errorf("key %q does not start with %q", res.Reader.Key(), tt.keyPrefix)
			}
			if tt.wantRows {
				got, err := res.Reader.ReadContracts(context.Background())
				if err != nil || len(got) == 0 {
					t.Errorf("expected seeded rows, got %d err=%v", len(got), err)
				}
			}
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	for _, cfg := range []Config{
		{Type: "postgres"},
		{Type: CSVBackend},
		{Type: SQLiteBackend},
		{Type: SheetsBackend},
	} {
		if _, err := f.CreateBackend(context.Background(), cfg); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := &config.Config{DataBackend: "sheets", GoogleSpreadsheetID: "abc", GoogleSheetName: "Contracts", GoogleServiceAccountJSON: "{}"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SheetsBackend || got.GoogleSpreadsheetID != "abc" || got.GoogleServiceAccountJSON != "{}" {
		t.Errorf("unexpected backend config %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestBackendTypes(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("redis").IsValid() {
		t.Error("redis should not be valid")
	}
}
