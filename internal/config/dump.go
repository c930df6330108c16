package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML renders the configuration the way it would be written in a config
// file, with durations in Go duration syntax.
func (c *Config) YAML() ([]byte, error) {
	doc := map[string]any{
		"server": map[string]any{
			"addr":           c.Server.Addr,
			"shutdown_grace": c.Server.ShutdownGrace.String(),
			"rate_limit":     c.Server.RateLimit,
			"session_ttl":    c.Server.SessionTTL.String(),
		},
		"recommender": map[string]any{
			"base_url":       c.Recommender.BaseURL,
			"contract":       c.Recommender.Contract,
			"timeout":        c.Recommender.Timeout.String(),
			"max_body_bytes": c.Recommender.MaxBodyBytes,
			"breaker": map[string]any{
				"enabled":       c.Recommender.Breaker.Enabled,
				"min_requests":  c.Recommender.Breaker.MinRequests,
				"failure_ratio": c.Recommender.Breaker.FailureRatio,
				"interval":      c.Recommender.Breaker.Interval.String(),
				"open_timeout":  c.Recommender.Breaker.OpenTimeout.String(),
				"half_open_max": c.Recommender.Breaker.HalfOpenMax,
			},
		},
		"ui": map[string]any{
			"title":         c.UI.Title,
			"notice_html":   c.UI.NoticeHTML,
			"icons":         c.UI.Icons,
			"templates_dir": c.UI.TemplatesDir,
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
			"caller": c.Log.Caller,
		},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("config: encode yaml: %w", err)
	}
	return out, nil
}
