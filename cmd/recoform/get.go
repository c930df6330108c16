package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/orchestrator"
)

func newGetCmd(a *app) *cobra.Command {
	var method, id, output string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Request recommendations once and print the result",
		Example: `  recoform get --method cbf --id p1
  recoform get --method svd --id 42 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := model.ParseMethod(method)
			if err != nil {
				return err
			}
			switch output {
			case "text", "json", "html":
			default:
				return fmt.Errorf("unsupported output %q (text, json, html)", output)
			}

			orch, err := a.orchestrator(cmd.Context(), nil)
			if err != nil {
				return err
			}
			result, err := orch.Generate(cmd.Context(), orchestrator.Request{
				Method:     parsed,
				Identifier: id,
				Renderer:   output,
			})
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(result.Output); err != nil {
				return err
			}
			if result.State.Error != "" {
				return errSubmitFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", string(model.DefaultMethod()), "recommendation method (user_based, item_based, cbf, svd)")
	cmd.Flags().StringVar(&id, "id", "", "user, item or product identifier for the method")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, html)")
	_ = cmd.RegisterFlagCompletionFunc("method", completeMethods)
	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "html"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
