package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"specter/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration under .specter/",
	Run:   runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	rootDir, err := filepath.Abs(rootFlag)
	if err != nil {
		exitErr("resolving root", err)
	}

	cfg := config.DefaultConfig()
	cfg.RootDir = rootDir
	if err := cfg.Save(rootDir); err != nil {
		exitErr("writing config", err)
	}
	fmt.Printf("Wrote %s\n", filepath.Join(rootDir, ".specter", "config.json"))
}
