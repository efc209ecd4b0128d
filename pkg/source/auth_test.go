package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"forge-hq/t3dport/pkg/config"
)

func TestNewAuthProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.GitAuthConfig
		wantType string
		wantErr  bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "none", cfg: &config.GitAuthConfig{Type: "none"}, wantType: "none"},
		{name: "empty type", cfg: &config.GitAuthConfig{}, wantType: "none"},
		{name: "token", cfg: &config.GitAuthConfig{Type: "token", Token: "secret"}, wantType: "token"},
		{name: "token missing", cfg: &config.GitAuthConfig{Type: "token"}, wantErr: true},
		{name: "ssh", cfg: &config.GitAuthConfig{Type: "ssh", SSHKeyPath: "/keys/id"}, wantType: "ssh"},
		{name: "ssh missing key", cfg: &config.GitAuthConfig{Type: "ssh"}, wantErr: true},
		{name: "unknown", cfg: &config.GitAuthConfig{Type: "kerberos"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAuthProvider(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAuthProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", p.Type(), tt.wantType)
			}
		})
	}
}

func TestTokenAuth(t *testing.T) {
	auth, err := NewTokenAuth("secret").GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	basic, ok := auth.(*http.BasicAuth)
	if !ok {
		t.Fatalf("GetAuth() = %T, want *http.BasicAuth", auth)
	}
	if basic.Password != "secret" {
		t.Errorf("Password = %q, want secret", basic.Password)
	}

	if _, err := NewTokenAuth("").GetAuth(); err == nil {
		t.Error("GetAuth() accepted an empty token")
	}
}

func TestSSHAuth_Permissions(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_test")
	if err := os.WriteFile(keyPath, []byte("not a key"), 0644); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	if _, err := NewSSHAuth(keyPath, "").GetAuth(); err == nil {
		t.Error("GetAuth() accepted a world-readable key")
	}
	if _, err := NewSSHAuth(filepath.Join(t.TempDir(), "missing"), "").GetAuth(); err == nil {
		t.Error("GetAuth() accepted a missing key")
	}
}

func TestNoAuth(t *testing.T) {
	auth, err := NoAuth{}.GetAuth()
	if err != nil || auth != nil {
		t.Errorf("GetAuth() = %v, %v, want nil, nil", auth, err)
	}
}
