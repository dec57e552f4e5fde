// Package config handles configuration loading for coven-chat.
//
// # Configuration File
//
// Location, in order of preference:
//
//  1. Path from the COVEN_CHAT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/coven/chat.yaml
//  3. ~/.config/coven/chat.yaml
//
// A missing file is not an error: LoadOrDefault returns Default(). Files
// ending in .toml are decoded as TOML; everything else is YAML.
//
// # Example
//
//	agent:
//	  url: "https://agents.example.com/chat"
//	  timeout: "2m"
//	  headers:
//	    Authorization: "Bearer ${COVEN_AGENT_TOKEN}"
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
//	ui:
//	  sample_data: true
//	  sender: "You"
//
//	logging:
//	  level: "debug"   # debug, info, warn, error
//	  format: "json"   # text or json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Environment Variable Expansion
//
// ${VAR_NAME} anywhere in the file is replaced before parsing. Unset
// variables expand to the empty string.
//
// # Durations
//
// agent.timeout uses time.ParseDuration syntax. Leaving it unset means agent
// calls have no deadline.
package config
