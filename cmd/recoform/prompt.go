package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/renderers/tui"
)

func newPromptCmd(a *app) *cobra.Command {
	var method string
	var once bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill in the recommendation form interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			orch, err := a.orchestrator(ctx, nil)
			if err != nil {
				return err
			}

			var formOpts []form.Option
			if method != "" {
				parsed, err := model.ParseMethod(method)
				if err != nil {
					return err
				}
				formOpts = append(formOpts, form.WithMethod(parsed))
			}
			f, err := orch.NewForm(formOpts...)
			if err != nil {
				return err
			}
			defer f.Close()

			opts := []tui.Option{
				tui.WithPromptDriver(a.newPromptDriver(cmd.OutOrStdout())),
				tui.WithLogger(logging.WithComponent("tui")),
			}
			if once {
				opts = append(opts, tui.WithOnce())
			}
			runner, err := tui.New(f, opts...)
			if err != nil {
				return err
			}
			return runner.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "initially selected method (user_based, item_based, cbf, svd)")
	cmd.Flags().BoolVar(&once, "once", false, "exit after the first submit")
	_ = cmd.RegisterFlagCompletionFunc("method", completeMethods)
	return cmd
}

func completeMethods(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(model.Methods()))
	for _, m := range model.Methods() {
		out = append(out, string(m))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
