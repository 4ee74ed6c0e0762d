package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dylanhross/dhr-util/logger"
	"github.com/dylanhross/dhr-util/rnaseq"
)

func main() {
	root := &cobra.Command{
		Use:          "rnaseq",
		Short:        "Align raw RNAseq reads and count genomic features",
		Long:         "Performs the processing steps necessary to take raw RNAseq reads, align them to a reference genome, and count the aligned genomic features in all samples. Requires hisat2, samtools and featureCounts to be installed and accessible on the system.",
		SilenceUsage: true,
	}

	var configPath string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full alignment and counting sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rnaseq.LoadConfig(configPath)
			if err != nil {
				return err
			}
			log := logger.NewConsoleLogger()
			return rnaseq.NewPipeline(cfg, log).Run(cmd.Context())
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "config.json", "configuration file to use (json or yaml)")

	makeConfigCmd := &cobra.Command{
		Use:   "make-config [path]",
		Short: "Generate a template for the configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.json"
			if len(args) == 1 {
				path = args[0]
			}
			if err := rnaseq.WriteSampleConfig(path); err != nil {
				return err
			}
			fmt.Printf("wrote template configuration to %s\n", path)
			return nil
		},
	}

	root.AddCommand(runCmd, makeConfigCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
