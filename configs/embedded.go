// Package configs holds the configuration defaults compiled into blog-rss.
package configs

import _ "embed"

// DefaultYAML is the base configuration every config file is merged over
//
//go:embed default.yaml
var DefaultYAML []byte
