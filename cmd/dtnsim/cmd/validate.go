package cmd

import (
	"fmt"

	"github.com/sarchlab/dtnsim/trace"
	"github.com/spf13/cobra"
)

func newValidateCmd(o *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "validate",
		Short: "Check the settings and the input files without simulating.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.settings()
			if err != nil {
				return err
			}

			span, err := trace.Scan(s.Trace.File, s.Nodes, s.Trace.Lines)
			if err != nil {
				return err
			}

			if s.Presence.File != "" {
				if _, err := trace.LoadPresence(s.Presence.File, s.Nodes); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trace %s: %d contacts from %.2f to %.2f\n",
				s.Trace.File, span.Contacts, span.First, span.Last)
			fmt.Fprintf(out, "settings ok: %d nodes, %s routing\n",
				s.Nodes, s.Routing)

			return nil
		},
	}

	addSimFlags(c.Flags())

	return c
}
