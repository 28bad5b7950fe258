package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

const testManifest = `[package]
name = "explore"
version = "0.1.0"

[tool.dojo.env]
rpc_url = "http://localhost:8080/"
account_address = "0x517ececd29116499f4a1b64b094da79ba08dfd54a3edaa316134c41f8160973"
world_address = "0x1385f25d20a724edc9c7b3bd9636c59af64cbaf9fcd12f33b3af96b2452f295"

[profile.staging.tool.dojo.env]
rpc_url = "https://explore.example.com"
move_action = "unsafe"
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Scarb.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeManifest(t, testManifest)

	t.Run("base env", func(t *testing.T) {
		p, err := LoadProfile(path, "")
		if err != nil {
			t.Fatalf("LoadProfile() error = %v", err)
		}
		if p.RPCURL != "http://localhost:8080/" {
			t.Errorf("RPCURL = %q", p.RPCURL)
		}
		if p.MoveAction != "" {
			t.Errorf("MoveAction = %q, want empty", p.MoveAction)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("named profile overrides", func(t *testing.T) {
		p, err := LoadProfile(path, "staging")
		if err != nil {
			t.Fatalf("LoadProfile() error = %v", err)
		}
		if p.RPCURL != "https://explore.example.com" {
			t.Errorf("RPCURL = %q", p.RPCURL)
		}
		if p.WorldAddress == "" {
			t.Error("WorldAddress should be inherited from the base env")
		}
		a, ok, err := p.Action()
		if err != nil || !ok || a != component.Unsafe {
			t.Errorf("Action() = %v, %v, %v", a, ok, err)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := LoadProfile(path, "prod")
		if !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("error = %v, want ErrInvalidProfile", err)
		}
	})

	t.Run("missing manifest", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.toml"), "")
		if !errors.Is(err, ErrManifestNotFound) {
			t.Errorf("error = %v, want ErrManifestNotFound", err)
		}
	})

	t.Run("malformed manifest", func(t *testing.T) {
		_, err := LoadProfile(writeManifest(t, "[tool.dojo.env\nrpc_url ="), "")
		if err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestProfileValidate(t *testing.T) {
	valid := Profile{
		RPCURL:         "http://localhost:8080",
		AccountAddress: "0x1",
		WorldAddress:   "0x2",
	}

	tests := []struct {
		name   string
		modify func(*Profile)
	}{
		{"missing rpc url", func(p *Profile) { p.RPCURL = "" }},
		{"non http rpc url", func(p *Profile) { p.RPCURL = "ftp://host" }},
		{"bad account", func(p *Profile) { p.AccountAddress = "alice" }},
		{"bad world", func(p *Profile) { p.WorldAddress = "" }},
		{"bad move action", func(p *Profile) { p.MoveAction = "reckless" }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Validate() error = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestProfileMerge(t *testing.T) {
	base := Profile{RPCURL: "http://a", AccountAddress: "0x1", APIKey: "k"}
	got := base.Merge(Profile{RPCURL: "http://b", MoveAction: "safe"})
	if got.RPCURL != "http://b" || got.AccountAddress != "0x1" || got.APIKey != "k" || got.MoveAction != "safe" {
		t.Errorf("Merge() = %+v", got)
	}
}
