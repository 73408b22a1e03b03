package main

import (
	"fmt"
	"os"

	"github.com/weiawesome/wes-io-live/idgen/internal/cli"
	"github.com/weiawesome/wes-io-live/idgen/internal/config"
	"github.com/weiawesome/wes-io-live/idgen/internal/generator"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
)

func main() {
	rootCmd := cli.NewRootCommand(func(logLevel string) (*generator.Registry, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		logger := pkglog.New(pkglog.Config{
			Level:       logLevel,
			Pretty:      true,
			ServiceName: "idgen-cli",
			Output:      os.Stderr,
		})
		return generator.Build(cfg, logger)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
