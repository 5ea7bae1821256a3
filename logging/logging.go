package logging

import (
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// Setup points the default apex logger at w with the cli handler and the
// given level ("debug", "info", "warn", "error", "fatal").
func Setup(level string, w io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetHandler(cli.New(w))
	log.SetLevel(lvl)
	return nil
}
