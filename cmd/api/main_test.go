package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/GunarsK-portfolio/user-service/internal/config"
)

func TestHashPassword_FromStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCommand()
	cmd.SetIn(strings.NewReader("s3cret\n"))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"hash-password", "--cost", "4"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("printed hash does not match password: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != 4 {
		t.Errorf("cost = %d, want 4", cost)
	}
}

func TestHashPassword_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
	}{
		{"empty password", "\n", []string{"hash-password", "--cost", "4"}},
		{"cost out of range", "pw\n", []string{"hash-password", "--cost", "99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := rootCommand()
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tt.args)

			if err := cmd.Execute(); err == nil {
				t.Error("Execute() error = nil, want error")
			}
		})
	}
}

func TestServe_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cmd := rootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() error = nil, want configuration error")
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := &config.Config{
		Port:        "0",
		UsersDBPath: filepath.Join(t.TempDir(), "users.json"),
		JWTSecret:   "serve-test-secret-at-least-32-bytes!!",
		JWTTTL:      time.Hour,
		TokenHeader: "Authorization",
		BcryptCost:  4,
		HashWorkers: 1,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, logger) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil after cancel", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}

func TestServe_WeakSecret(t *testing.T) {
	cfg := &config.Config{
		Port:        "0",
		JWTSecret:   "short",
		BcryptCost:  4,
		HashWorkers: 1,
	}

	if err := serve(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("serve() error = nil, want weak secret error")
	}
}
