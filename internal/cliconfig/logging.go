package cliconfig

import "github.com/bft-labs/outbound/pkg/log"

// Logger returns a zerolog-backed logger for the configured level and format.
func (c *Config) Logger() *log.ZerologAdapter {
	return log.NewZerologAdapter(log.Output(c.LogFormat), c.LogLevel)
}
