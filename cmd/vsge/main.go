// Command vsge plays chords and progressions through the scheduling engine.
//
//	vsge chord C4 minor --style jazz --tempo 96
//	vsge progression C4 "I-V-vi-IV" --style pop --sink midi --midi-port 1
//	vsge styles
//
// Settings come from VSGE_* environment variables (optionally read from a
// .env file) and are overridden by flags.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cobra.CheckErr(newRootCmd().ExecuteContext(ctx))
}
