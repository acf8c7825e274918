// Package config loads runtime configuration for the taskhub CLI.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags -a, -w and -i.
//
// JSON example:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "websocket_url": "ws://127.0.0.1:8080",
//	  "online_check_interval": "3s"
//	}
package config
