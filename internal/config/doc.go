// Package config loads tabula's TOML configuration.
//
// # Sources
//
// Values resolve in this order, highest first:
//
//  1. The API_URL environment variable (collection URL only)
//  2. Command-line overrides (-api-url, -page-size)
//  3. ~/.config/tabula/config.toml, or the file given with -config
//  4. Built-in defaults
//
// A missing config file is not an error; defaults apply.
//
// # TOML Format
//
//	api_url = "https://jsonplaceholder.typicode.com/posts"
//	page_size = 5
//	request_timeout = "0s"   # 0 waits indefinitely
//	log_file = "~/.local/state/tabula/tabula.log"
//	log_level = "info"
//	metrics_addr = ""        # e.g. "127.0.0.1:9464"; empty disables
//	user_agent = "tabula"
//
// Every field is optional. Paths expand a leading tilde.
package config
