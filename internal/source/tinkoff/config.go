package tinkoff

import (
	"strings"
	"time"
)

type Config struct {
	Token       string
	RESTBaseURL string
	HTTPTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	out.Token = strings.TrimSpace(out.Token)
	out.RESTBaseURL = strings.TrimSpace(out.RESTBaseURL)
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = "https://api-invest.tinkoff.ru/openapi"
	}
	out.RESTBaseURL = strings.TrimSuffix(out.RESTBaseURL, "/")
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	return out
}
