package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	if err != nil {
		t.Fatalf("generatePassword: %v", err)
	}
	b, _ := generatePassword(16)
	if len(a) != 16 {
		t.Errorf("expected 16 characters, got %d", len(a))
	}
	if a == b {
		t.Error("expected two passwords to differ")
	}
}

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite3")

	database, password, err := initDatabase(path, "Owner")
	if err != nil {
		t.Fatalf("initDatabase: %v", err)
	}
	defer database.Close()

	if password == "" {
		t.Fatal("expected a generated password")
	}
	user, err := store.New(database).GetUserByUsername(context.Background(), "Owner")
	if err != nil || user == nil {
		t.Fatalf("admin user not created: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %s", user.Role)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	t.Setenv("IZPOSOJA_ADDR", ":9000")
	t.Setenv("IZPOSOJA_DB", "env.sqlite3")

	opts := &rootOptions{}
	cmd := newRootCommand(opts)
	if err := cmd.ParseFlags([]string{"--addr", ":7000"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := opts.load(cmd); err != nil {
		t.Fatalf("load: %v", err)
	}

	if opts.cfg.Addr != ":7000" {
		t.Errorf("expected flag address :7000, got %s", opts.cfg.Addr)
	}
	if opts.cfg.DBPath != "env.sqlite3" {
		t.Errorf("expected database path from environment, got %s", opts.cfg.DBPath)
	}
}

func TestPrintOverdue(t *testing.T) {
	now := time.Date(2025, 1, 13, 15, 0, 0, 0, time.UTC)
	rentals := []model.Rental{{
		ID:              7,
		CustomerName:    "Dewi",
		CostumeName:     "Kebaya Bali",
		Quantity:        2,
		ScheduledReturn: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := printOverdue(&buf, rentals, decimal.NewFromInt(5000), now); err != nil {
		t.Fatalf("printOverdue: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Dewi", "Kebaya Bali", "2025-01-10", "Rp 30"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	printOverdue(&buf, nil, decimal.NewFromInt(5000), now)
	if !strings.Contains(buf.String(), "No overdue rentals") {
		t.Errorf("unexpected output for no rentals: %q", buf.String())
	}
}
