package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solalloc/solalloc/config"
	"github.com/solalloc/solalloc/infra/scenario"
)

var generateOut string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic scenario file",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "scenario.json", "output file")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sc, err := scenario.Generate(cfg.Scenario.Generator)
	if err != nil {
		return err
	}
	if err := scenario.Save(generateOut, sc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d units x %d periods to %s\n",
		sc.NumUnits(), sc.NumPeriods(), generateOut)
	return nil
}
