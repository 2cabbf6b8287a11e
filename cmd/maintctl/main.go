package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/tools/healthcheck"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/tools/migrate"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/tools/seed"
)

func main() {
	root := &cobra.Command{
		Use:   "maintctl",
		Short: "Operational tooling for the maintenance service",
	}
	root.AddCommand(
		migrate.NewRootCommand(),
		seed.NewRootCommand(),
		healthcheck.NewRootCommand(),
	)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
