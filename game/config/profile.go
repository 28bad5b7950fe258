package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

var (
	ErrManifestNotFound = errors.New("manifest not found")
	ErrInvalidProfile   = errors.New("invalid profile")
)

// Profile holds everything the client needs to reach one account of one world
type Profile struct {
	RPCURL         string `toml:"rpc_url" json:"rpc_url"`
	AccountAddress string `toml:"account_address" json:"account_address"`
	WorldAddress   string `toml:"world_address" json:"world_address"`
	APIKey         string `toml:"api_key" json:"-"`
	MoveAction     string `toml:"move_action" json:"move_action,omitempty"`
}

type dojoTool struct {
	Dojo struct {
		Env Profile `toml:"env"`
	} `toml:"dojo"`
}

// scarbManifest is the subset of Scarb.toml the client reads
type scarbManifest struct {
	Tool    dojoTool `toml:"tool"`
	Profile map[string]struct {
		Tool dojoTool `toml:"tool"`
	} `toml:"profile"`
}

// LoadProfile reads [tool.dojo.env] from the Scarb manifest at path. When
// name is set, [profile.<name>.tool.dojo.env] overrides the base values.
func LoadProfile(path, name string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest scarbManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	profile := manifest.Tool.Dojo.Env
	if name != "" {
		named, ok := manifest.Profile[name]
		if !ok {
			return nil, fmt.Errorf("%w: profile %q not in %s", ErrInvalidProfile, name, path)
		}
		profile = profile.Merge(named.Tool.Dojo.Env)
	}
	return &profile, nil
}

// Merge returns p with every non-empty field of over applied on top
func (p Profile) Merge(over Profile) Profile {
	if over.RPCURL != "" {
		p.RPCURL = over.RPCURL
	}
	if over.AccountAddress != "" {
		p.AccountAddress = over.AccountAddress
	}
	if over.WorldAddress != "" {
		p.WorldAddress = over.WorldAddress
	}
	if over.APIKey != "" {
		p.APIKey = over.APIKey
	}
	if over.MoveAction != "" {
		p.MoveAction = over.MoveAction
	}
	return p
}

// Validate checks the profile is complete and well formed
func (p Profile) Validate() error {
	if p.RPCURL == "" {
		return fmt.Errorf("%w: rpc_url is required", ErrInvalidProfile)
	}
	u, err := url.Parse(p.RPCURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: rpc_url must be an http(s) URL, got %q", ErrInvalidProfile, p.RPCURL)
	}
	if _, err := component.ParseFelt(p.AccountAddress); err != nil {
		return fmt.Errorf("%w: account_address: %v", ErrInvalidProfile, err)
	}
	if _, err := component.ParseFelt(p.WorldAddress); err != nil {
		return fmt.Errorf("%w: world_address: %v", ErrInvalidProfile, err)
	}
	if _, _, err := p.Action(); err != nil {
		return err
	}
	return nil
}

// Action returns the move action to append to Move calldata. The boolean
// is false when moves carry the direction only.
func (p Profile) Action() (component.Action, bool, error) {
	if p.MoveAction == "" {
		return 0, false, nil
	}
	a, err := component.ParseAction(p.MoveAction)
	if err != nil {
		return 0, false, fmt.Errorf("%w: move_action: %v", ErrInvalidProfile, err)
	}
	return a, true, nil
}
