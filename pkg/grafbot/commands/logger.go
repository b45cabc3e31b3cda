// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"
)

// LoggerConfig wires the global logger into the kingpin application. Its
// PreAction runs before any command action, so every command logs at the
// requested level.
type LoggerConfig struct {
	level string
}

func (l *LoggerConfig) Register(app *kingpin.Application) {
	app.Flag("log.level", "Set the level of logging output.").
		Default("info").
		EnumVar(&l.level, "debug", "info", "warn", "error")
	app.PreAction(l.setup)
}

func (l *LoggerConfig) setup(_ *kingpin.ParseContext) error {
	level, err := log.ParseLevel(l.level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}
