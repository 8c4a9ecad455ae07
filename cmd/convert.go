package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pic2any/batch"
	"pic2any/config"
	"pic2any/contracts"
	"pic2any/files_manager"
	"pic2any/formats"
)

func newConvertCmd(configPath *string) *cobra.Command {
	var (
		to      string
		icoSize int
		outDir  string
		workers int
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "convert [flags] FILES...|DIR",
		Short: "Convert images without the interactive picker",
		Long: `Convert the named files, or every supported image directly inside the
named directories, to the target format. Exits non-zero when any input
fails; the remaining inputs are still converted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if logFile != "" {
				cfg.LogFile = logFile
			}

			files, err := files_manager.ExpandInputs(args)
			if err != nil {
				return err
			}

			if outDir == "" && cfg.OutputDirName != batch.DefaultOutputDirName {
				outDir = filepath.Join(filepath.Dir(files[0]), cfg.OutputDirName)
			}

			logger, closeLog, err := newLogger(cfg.LogFile)
			if err != nil {
				return err
			}
			defer closeLog()

			o := batch.New(cfg.Workers, logger, nil)
			summary, err := o.Run(contracts.ConversionRequest{
				Files:     files,
				Format:    to,
				IconSize:  icoSize,
				OutputDir: outDir,
			})
			if err != nil {
				return err
			}

			for _, out := range summary.Outcomes {
				if out.OK {
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %s -> %s\n", out.Input, strings.Join(out.Outputs, ", "))
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "fail %s: %s\n", out.Input, out.Err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d converted, %d failed, output in %s\n",
				summary.Succeeded, summary.Failed, summary.OutputRoot)

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target format: "+strings.Join(formats.Tokens(), ", "))
	cmd.Flags().IntVar(&icoSize, "ico-size", 0, "square icon resolution for --to ico (16, 32, 64, 128 or 256)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: \"pic\" next to the first input)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent conversions, capped at 4")
	cmd.Flags().StringVar(&logFile, "log", "", "append diagnostics to this file")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
