package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/vsge-go/internal/humanize"
	"github.com/cbegin/vsge-go/internal/rhythm"
)

func newStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "Lists the rhythm styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, style := range rhythm.Styles() {
				p, err := rhythm.Lookup(style)
				if err != nil {
					return err
				}
				h, err := humanize.Preset(style)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-5s %-19s %s\n", style, p.Name(), p.Description())
				fmt.Fprintf(w, "      timing ±%.3f beats, velocity ±%d, swing %.2f\n",
					h.TimingRange()/2, h.VelocityRange()/2, h.SwingRatio())
			}
			return nil
		},
	}
}
