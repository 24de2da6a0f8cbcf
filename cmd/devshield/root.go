package devshield

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	flagLogLevel        string
	flagLogJSON         bool
	flagStrictPolicy    bool
	flagPolicy          string
	flagThreads         int
	flagNoColor         bool
	flagNoCache         bool
	flagDefaultExcludes bool
	flagNoUpdateCheck   bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the DevShield CLI.
var rootCmd = &cobra.Command{
	Use:           "devshield",
	Short:         "Keep secrets out of your commits",
	Long:          "DevShield finds candidate secrets in source code, scores their risk, applies your policy and explains what to do about them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode is returned by commands that finished normally but must make the
// process exit non-zero, such as a tripped fail-on gate.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// Execute runs the DevShield CLI. It should be called by the main package.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var code exitCode
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagStrictPolicy, "strict-policy", false, "fail instead of using the default policy when the policy file is unavailable")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "policy document (JSON or YAML); defaults to devshield.policy.json in the repo root")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable incremental scan cache")
	rootCmd.PersistentFlags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "apply built-in exclude list (node_modules, dist, images, etc.)")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}
