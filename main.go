package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/santhoshcheemala/zkcredit/config"
	"github.com/santhoshcheemala/zkcredit/ezkl"
	"github.com/santhoshcheemala/zkcredit/lib"
	"github.com/santhoshcheemala/zkcredit/logging"
	"github.com/santhoshcheemala/zkcredit/pipeline"
)

var (
	flagConfig      string
	flagSharedDir   string
	flagSubjectsDir string
	flagEzklBin     string
	flagLogLevel    string
	flagLogFile     string

	flagModel       string
	flagCalibration string
	flagContract    bool

	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:     lib.Name,
	Version: lib.Version,
	Short:   "Generate and verify zero-knowledge credit score proofs",
	Long: `zkcredit orchestrates the ezkl proving engine around a trained credit
scoring model. A one-time common phase compiles the model into a circuit and
derives the shared proving artifacts; a repeatable per-subject phase produces
a witness, a proof, verifies it locally, and can emit an on-chain verifier
contract with calldata.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagSharedDir != "" {
			cfg.SharedDir = flagSharedDir
		}
		if flagSubjectsDir != "" {
			cfg.SubjectsDir = flagSubjectsDir
		}
		if flagEzklBin != "" {
			cfg.EzklBin = flagEzklBin
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}
		if flagLogFile != "" {
			cfg.LogFile = flagLogFile
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger = logging.New(cfg.LogLevel, cfg.LogFile)
		return nil
	},
}

var setupCommonCmd = &cobra.Command{
	Use:   "setup-common",
	Short: "Compile the model circuit and derive the shared proving artifacts",
	Long: `Runs the one-time phase: generate and optionally calibrate circuit
settings, compile the model, download the reference string if absent, and run
setup to derive the proving and verification keys. Steps whose outputs already
exist are skipped, so rerunning is cheap and resumes after interruption.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := newOrchestrator()
		if err != nil {
			return err
		}
		return orch.SetupCommon(cmd.Context(), flagModel, flagCalibration)
	},
}

var proveCmd = &cobra.Command{
	Use:   "prove <address>",
	Short: "Generate and locally verify a proof for one subject",
	Long: `Runs the per-subject phase for the given address. The subject's
directory must contain a subject.json input record, and the shared circuit
artifacts must be complete (setup-common). With --contract, additionally
emits the EVM verifier contract and its calldata.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := newOrchestrator()
		if err != nil {
			return err
		}
		return orch.GenerateForSubject(cmd.Context(), args[0], flagContract)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan [address]",
	Short: "Show pipeline progress from artifact presence, without running anything",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subjectID := ""
		if len(args) == 1 {
			subjectID = args[0]
		}
		// No engine needed here; the plan reads artifact presence only.
		orch := pipeline.New(cfg, nil, logger)
		plan := pipeline.BuildPlan(orch.Store(), subjectID)

		printSteps := func(title string, steps []pipeline.PlanStep) {
			fmt.Printf("%s:\n", title)
			for _, s := range steps {
				state := "pending"
				if s.Done {
					state = "done"
				}
				fmt.Printf("  %-18s %s\n", s.Stage, state)
			}
		}
		printSteps("common phase", plan.Common)
		if subjectID != "" {
			printSteps("subject "+subjectID, plan.Subject)
		}
		return nil
	},
}

func newOrchestrator() (*pipeline.Orchestrator, error) {
	client, err := ezkl.NewClient(cfg.EzklBin, cfg.ToolTimeout.Std(), logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, client, logger), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&flagSharedDir, "shared-dir", "", "shared circuit artifacts directory")
	rootCmd.PersistentFlags().StringVar(&flagSubjectsDir, "subjects-dir", "", "per-subject artifacts directory")
	rootCmd.PersistentFlags().StringVar(&flagEzklBin, "ezkl-bin", "", "proving engine binary")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "also write logs to this rotated file")

	setupCommonCmd.Flags().StringVarP(&flagModel, "model", "m", "", "path to the ONNX model file (required)")
	setupCommonCmd.Flags().StringVarP(&flagCalibration, "calibration-data", "d", "", "sample input for settings calibration")
	_ = setupCommonCmd.MarkFlagRequired("model")

	proveCmd.Flags().BoolVar(&flagContract, "contract", false, "also generate the EVM verifier contract and calldata")

	rootCmd.AddCommand(setupCommonCmd, proveCmd, planCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
