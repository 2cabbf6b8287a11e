//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		DatabaseSet,
		RepositorySet,
		SecuritySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}

func InitializeMigrationRunner() (*MigrationRunner, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		NewMigrationRunner,
	))
}
