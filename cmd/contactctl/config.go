package main

import (
	"fmt"

	"github.com/secureport/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  `Load config.yml with environment overrides and print it with secrets masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := []string{".", "./config", "../", "./etc"}
			if dir != "" {
				paths = []string{dir}
			}
			cfg, err := config.LoadFrom(viper.New(), paths...)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing config.yml")
	return cmd
}
