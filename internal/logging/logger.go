// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide debug logger. It discards everything until
// Setup enables it, so call sites can log unconditionally.
var Logger = zerolog.New(io.Discard)

// Setup configures the debug logger. When verbose is false all output is
// discarded; otherwise human-readable logs go to stderr.
func Setup(verbose bool) {
	if !verbose {
		Logger = zerolog.New(io.Discard)
		return
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	Logger = zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// Debugf logs a printf-style debug message with secrets masked.
func Debugf(format string, args ...any) {
	Logger.Debug().Msg(Mask(fmt.Sprintf(format, args...)))
}
