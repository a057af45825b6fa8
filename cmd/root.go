// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package cmd provides the commands for the yangcheck CLIs.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/defenseunicorns/yangcheck"
	"github.com/defenseunicorns/yangcheck/config"
	configv0 "github.com/defenseunicorns/yangcheck/config/v0"
	"github.com/defenseunicorns/yangcheck/data"
)

const modulePath = "github.com/defenseunicorns/yangcheck"

// NewRootCmd creates the root command for the yangcheck CLI.
func NewRootCmd() *cobra.Command {
	var (
		level        = config.DefaultLogLevel // VarP does not allow you to set a default value
		withDefaults = data.DefaultWithDefaults
		format       = data.DefaultFormat
		ver          bool
		configPath   string
	)

	// closure initializer, default < cfg < flags
	loadConfig := func(cmd *cobra.Command) error {
		cfg, err := loadConfigFile(cmd, configPath)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
			if err := level.Set(cfg.LogLevel.String()); err != nil {
				return err
			}
		}
		if !cmd.Flags().Changed("with-defaults") && cfg.WithDefaults != "" {
			if err := withDefaults.Set(cfg.WithDefaults.String()); err != nil {
				return err
			}
		}
		if !cmd.Flags().Changed("output-format") && cfg.OutputFormat != "" {
			if err := format.Set(cfg.OutputFormat.String()); err != nil {
				return err
			}
		}
		return nil
	}

	root := &cobra.Command{
		Use:   "yangcheck <schema-file> <data-file>",
		Short: "Validate JSON configuration data against a YANG schema",
		Long: `Load a YANG schema, read a JSON (RFC 7951) document against it as configuration
data, and print the validated tree.

Imported and included modules are looked up in ./modules, then in the current directory.`,
		Example: `
yangcheck system.yang system.json

yangcheck --with-defaults report-all -o json system.yang system.json
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if ver {
				return nil
			}
			if len(args) != 2 {
				return yangcheck.UsageError(fmt.Errorf("usage: %s", cmd.UseLine()))
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := level.Level()
			if err != nil {
				return err
			}
			logger := log.FromContext(cmd.Context())
			logger.SetLevel(l)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ver {
				return printVersion(cmd)
			}

			// nothing reaches stdout unless every stage succeeds
			out := bufio.NewWriter(cmd.OutOrStdout())

			err := yangcheck.Check(cmd.Context(), afero.NewOsFs(), out, args[0], args[1], yangcheck.CheckOptions{
				Format:       format,
				WithDefaults: withDefaults,
				Highlight:    isTerminal(cmd),
			})
			if err != nil {
				return err
			}

			if err := out.Flush(); err != nil {
				return &yangcheck.Error{Kind: yangcheck.KindExamine, Err: err}
			}
			return nil
		},
	}

	root.Flags().VarP(&level, "log-level", "l", fmt.Sprintf(`Set log level ("%s")`, strings.Join(config.AvailableLogLevels(), `", "`)))
	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.AvailableLogLevels(), cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().Var(&withDefaults, "with-defaults", fmt.Sprintf(`Set how default values are printed ("%s")`, strings.Join(data.AvailableWithDefaults(), `", "`)))
	_ = root.RegisterFlagCompletionFunc("with-defaults", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return data.AvailableWithDefaults(), cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().VarP(&format, "output-format", "o", fmt.Sprintf(`Set output format ("%s")`, strings.Join(data.AvailableFormats(), `", "`)))
	_ = root.RegisterFlagCompletionFunc("output-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return data.AvailableFormats(), cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().BoolVarP(&ver, "version", "V", false, "Print version number and exit")
	root.Flags().StringVarP(&configPath, "config", "", "${HOME}/.yangcheck/config.yaml", "Path to yangcheck config file") // mirrors config.DefaultDirectory
	_ = root.MarkFlagFilename("config", "yaml", "yml")

	return root
}

// loadConfigFile loads the config named by --config, then $YANGCHECK_CONFIG, then the default location
func loadConfigFile(cmd *cobra.Command, configPath string) (*configv0.Config, error) {
	path := ""
	switch {
	case cmd.Flags().Changed("config"):
		path = os.ExpandEnv(configPath)
	case os.Getenv(config.EnvVar) != "":
		path = os.Getenv(config.EnvVar)
	default:
		return configv0.LoadDefaultConfig()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := configv0.LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

func printVersion(cmd *cobra.Command) error {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Errorf("version information not available")
	}
	switch bi.Main.Path {
	case modulePath:
		fmt.Fprintln(cmd.OutOrStdout(), bi.Main.Version)
	default:
		for _, dep := range bi.Deps {
			if dep.Path == modulePath {
				fmt.Fprintln(cmd.OutOrStdout(), dep.Version)
				break
			}
		}
	}
	return nil
}

// isTerminal reports whether the command writes to an interactive terminal
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Main executes the root command for the yangcheck CLI.
//
// It returns 0 on success and the (negative) error kind on failure, see ParseExitCode.
func Main() int {
	return execute(NewRootCmd())
}

func execute(cli *cobra.Command) int {
	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    true,
	})

	logger.SetStyles(DefaultStyles())

	ctx = log.WithContext(ctx, logger)
	_, err := cli.ExecuteContextC(ctx)
	if err != nil && !yangcheck.IsReported(err) {
		logger.Error(err)
	}
	return ParseExitCode(err)
}

// ParseExitCode calculates the exit code from a given error
//
//	 0 - the error was nil
//	-1 - usage errors, schema loading failures and any error without a kind (flags, config)
//	-2 - the data file could not be read or did not validate
//	-4 - the validated tree could not be printed
func ParseExitCode(err error) int {
	if err == nil {
		return 0
	}

	var kErr *yangcheck.Error
	if errors.As(err, &kErr) {
		return int(kErr.Kind)
	}
	return int(yangcheck.KindUsageOrLoad)
}
