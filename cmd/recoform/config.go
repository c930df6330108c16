package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.cfgFrom != "" {
				_, _ = fmt.Fprintf(w, "# loaded from %s\n", a.cfgFrom)
			}
			_, err = w.Write(out)
			return err
		},
	}
}
