package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/interpose/internal/app"
	"go.trai.ch/interpose/internal/sample"
)

func (c *CLI) newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the sample proxies through a fixed call script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			selector, _ := cmd.Flags().GetString("selector")
			offset, _ := cmd.Flags().GetInt("offset")
			return c.app.Demo(cmd.Context(), app.DemoOptions{
				ConfigPath: configPath(cmd),
				Mode:       mode,
				Selector:   selector,
				Offset:     offset,
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("mode", "m", app.ModeDelegating,
		"Proxy strategy: "+app.ModeDelegating+" or "+app.ModeOverriding)
	cmd.Flags().StringP("selector", "s", "all",
		"Interceptor selector: "+strings.Join(sample.SelectorNames(), ", "))
	cmd.Flags().IntP("offset", "o", 0, "Amount the offset interceptor adds to int results")
	return cmd
}
