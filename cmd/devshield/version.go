package devshield

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/update"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the DevShield version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "devshield %s\n", version)
			if info, ok := debug.ReadBuildInfo(); ok {
				for _, s := range info.Settings {
					if s.Key == "vcs.revision" && s.Value != "" {
						_, _ = fmt.Fprintf(out, "commit %s\n", s.Value)
					}
				}
			}
			if flagNoUpdateCheck {
				return nil
			}
			if latest, newer, _ := update.Check(cmd.Context(), version, false); newer {
				_, _ = fmt.Fprintf(out, "new version available: v%s (run 'devshield update')\n", latest)
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Update devshield to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := update.SelfUpdate(version)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "devshield is at v%s\n", v)
			return nil
		},
	})
}
