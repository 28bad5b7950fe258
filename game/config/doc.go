// Package config provides configuration management for the Explore client and
// its local dev world.
//
// The config package handles:
//   - Loading world configurations from JSON files
//   - Configuration validation and caching
//   - Default configuration management
//   - Reading the client profile from a Scarb manifest
//
// World Configurations:
//
// World configurations are stored as JSON files in the configs directory.
// Each configuration defines the starting board size, how many mines and
// pickups are placed, the starting inventory and the messages shown for
// each event. default.json is used when present; otherwise the first valid
// file, and finally the built-in rules.
//
// Client Profile:
//
// The client reads rpc_url, account_address, world_address, api_key and
// move_action from the [tool.dojo.env] table of Scarb.toml. A named profile
// in [profile.<name>.tool.dojo.env] overrides individual keys.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	worldConfig := manager.GetDefault()
//
//	profile, err := config.LoadProfile("Scarb.toml", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := profile.Validate(); err != nil {
//		log.Fatal(err)
//	}
package config
