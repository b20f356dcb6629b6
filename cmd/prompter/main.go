// Package main is the prompter command line harness: it drives the same
// completion pipeline the notebook host calls, from a terminal.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/prompterhq/prompter/internal/config"
	"github.com/prompterhq/prompter/internal/provider"
	"github.com/prompterhq/prompter/internal/translate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		debug   bool
	)

	root := &cobra.Command{
		Use:   "prompter",
		Short: "Run LLM prompts through the multi-provider completion pipeline",
		Long: `prompter sends a prompt through the configured LLM provider and coerces
the model's answer into the notebook cell output shape (format, tags,
response), printing the structured result and per-call telemetry.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newRunCmd(&cfgPath, &debug))
	root.AddCommand(newModelsCmd())

	return root
}

func newLogger(debug bool) *log.Logger {
	logger := log.New(os.Stderr)
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func newRunCmd(cfgPath *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run <prompt>",
		Short: "Execute a prompt and print the structured result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*debug)

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			runner := translate.NewRunner(cfg, translate.WithRunnerLogger(logger))
			prompt := strings.Join(args, " ")

			exec, err := runner.ExecuteCellPrompt(cmd.Context(), prompt, translate.CellShape())
			if err != nil {
				// Telemetry survives even failed calls; surface it
				// before reporting the failure.
				if exec != nil {
					logger.Info("call telemetry",
						"provider", exec.Provider,
						"model", exec.Model,
						"duration", exec.Duration,
					)
				}
				return err
			}

			logger.Info("call telemetry",
				"execution", exec.ID,
				"provider", exec.Provider,
				"model", exec.Model,
				"duration", exec.Duration,
				"temperature", exec.Temperature,
				"max_tokens", exec.MaxTokens,
			)
			if exec.Usage != nil {
				logger.Info("token usage",
					"prompt", exec.Usage.PromptTokens,
					"completion", exec.Usage.CompletionTokens,
					"total", exec.Usage.TotalTokens,
				)
			}

			if !exec.Outcome.Success {
				// The model answered but not in the requested shape.
				// A warning, not a failure: the caller may simply
				// re-run the cell.
				logger.Warn("model output did not match the requested shape",
					"reason", exec.Outcome.Message,
				)
				return nil
			}

			out, err := json.MarshalIndent(exec.Outcome.Data, "", "  ")
			if err != nil {
				return fmt.Errorf("rendering result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models each provider supports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := provider.IDs
			if len(args) == 1 {
				ids = []string{args[0]}
			}

			for _, id := range ids {
				models, err := provider.ListModels(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", id)
				if len(models) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "  (configured per deployment)")
					continue
				}
				for _, m := range models {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m)
				}
			}
			return nil
		},
	}
}
