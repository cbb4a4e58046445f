package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var errNoHealthyEndpoint = errors.New("no healthy endpoint")

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe every endpoint once and print the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mc, logger, err := a.client(nil)
			if err != nil {
				return err
			}
			defer logger.Sync()

			snap := mc.CheckHealth(cmd.Context())
			first := snap.FirstHealthy()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tENDPOINT\tSTATUS\tLATENCY\t")
			for i, url := range mc.Endpoints() {
				st := snap.Statuses[i]
				status := fmt.Sprintf("%d", st.StatusCode)
				if st.Err != nil {
					status = st.Err.Error()
				}
				marker := ""
				if i == first {
					marker = "*"
				}
				fmt.Fprintf(tw, "%d%s\t%s\t%s\t%s\t\n", i, marker, url, status, st.Latency.Round(time.Millisecond))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if first < 0 {
				return errNoHealthyEndpoint
			}
			return nil
		},
	}
}
