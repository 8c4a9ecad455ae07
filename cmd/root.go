package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pic2any/config"
	"pic2any/ui"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "pic2any",
		Short: "Batch image converter for HEIC, JPEG, PNG, WEBP, BMP, GIF, TIFF and ICO",
		Long: `pic2any converts batches of images between common formats.

Run it without arguments for the interactive picker, or use the convert
subcommand for scripted, headless batches. Outputs land in a "pic"
directory next to the first input unless told otherwise.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg.LogFile)
			if err != nil {
				return err
			}
			defer closeLog()
			return ui.Run(cfg, logger)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "pic2any.yaml", "path to the YAML config file")
	cmd.AddCommand(newConvertCmd(&configPath))

	return cmd
}
