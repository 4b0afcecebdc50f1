package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/depgate/internal"
	"github.com/rios0rios0/depgate/internal/infrastructure/controllers"
)

func injectAppContext(container *dig.Container) *internal.AppInternal {
	var appInternal *internal.AppInternal
	if err := container.Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		panic(err)
	}

	return appInternal
}

func injectAnalyzeController(container *dig.Container) *controllers.AnalyzeController {
	var analyzeController *controllers.AnalyzeController
	if err := container.Invoke(func(ac *controllers.AnalyzeController) {
		analyzeController = ac
	}); err != nil {
		panic(err)
	}

	return analyzeController
}

func newContainer() *dig.Container {
	container := dig.New()

	// Register all providers
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	return container
}
