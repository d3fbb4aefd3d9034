package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"rush/core/config"
	"rush/core/hos"
	"rush/core/logger"
	"rush/core/shell"
)

var cfgPath string

func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.Path()
	}
	return config.Load(afero.NewOsFs(), path)
}

// rootCmd is the whole CLI; rush takes no subcommands and runs the
// interactive session directly.
var rootCmd = &cobra.Command{
	Use:   "rush",
	Short: "A small interactive Unix command shell",
	Long: `rush reads command lines, wires the stages together with pipes and
redirections, and runs them as child processes, keeping per-session
command history and background jobs.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, closeLog, err := logger.New(cfg.LogPath)
		if err != nil {
			return err
		}
		defer closeLog()

		osys := hos.New()
		console, err := shell.NewConsole(osys.Stdin(), osys.Stdout(), osys.Stderr())
		if err != nil {
			return err
		}
		defer console.Close()

		shell.New(osys, console, cfg, log).Run()
		return nil
	},
}

// Execute runs the root command. This is called by main.main() and only
// needs to happen once.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")
}
