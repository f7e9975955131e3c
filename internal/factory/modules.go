// Package factory provides module creation functions for the analysis runtime.
// It instantiates input, filter, and output modules from their configuration
// using the module registry.
//
// To add a new module type, see the documentation in internal/registry.
// You do NOT need to modify this factory; just register your constructor.
package factory

import (
	"errors"
	"fmt"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/filter"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/input"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/output"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/registry"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

var (
	// ErrNilModuleConfig is returned when a required module configuration is missing.
	ErrNilModuleConfig = errors.New("module configuration is nil")
	// ErrUnknownModuleType is returned for a type no constructor is registered for.
	ErrUnknownModuleType = errors.New("unknown module type")
)

// CreateInputModule creates an input module instance from configuration.
// Unknown types and invalid configurations are configuration errors.
func CreateInputModule(cfg *ratings.ModuleConfig) (input.Module, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigurationError("creating input module", ErrNilModuleConfig)
	}

	constructor := registry.GetInputConstructor(cfg.Type)
	if constructor == nil {
		return nil, errhandling.NewConfigurationError("creating input module",
			fmt.Errorf("%w %q (known: %v)", ErrUnknownModuleType, cfg.Type, registry.ListInputTypes()))
	}
	module, err := constructor(cfg)
	if err != nil {
		return nil, errhandling.NewConfigurationError(fmt.Sprintf("invalid %s input config", cfg.Type), err)
	}
	return module, nil
}

// CreateFilterModules creates filter module instances from configuration, in order.
func CreateFilterModules(cfgs []ratings.ModuleConfig) ([]filter.Module, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}

	modules := make([]filter.Module, 0, len(cfgs))
	for i, cfg := range cfgs {
		constructor := registry.GetFilterConstructor(cfg.Type)
		if constructor == nil {
			return nil, errhandling.NewConfigurationError(fmt.Sprintf("creating filter at index %d", i),
				fmt.Errorf("%w %q (known: %v)", ErrUnknownModuleType, cfg.Type, registry.ListFilterTypes()))
		}
		module, err := constructor(cfg, i)
		if err != nil {
			return nil, errhandling.NewConfigurationError(fmt.Sprintf("creating filter at index %d", i), err)
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// CreateOutputModules creates output module instances from configuration, in order.
func CreateOutputModules(cfgs []ratings.ModuleConfig) ([]output.Module, error) {
	modules := make([]output.Module, 0, len(cfgs))
	for i := range cfgs {
		module, err := CreateOutputModule(&cfgs[i])
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// CreateOutputModule creates an output module instance from configuration.
func CreateOutputModule(cfg *ratings.ModuleConfig) (output.Module, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigurationError("creating output module", ErrNilModuleConfig)
	}

	constructor := registry.GetOutputConstructor(cfg.Type)
	if constructor == nil {
		return nil, errhandling.NewConfigurationError("creating output module",
			fmt.Errorf("%w %q (known: %v)", ErrUnknownModuleType, cfg.Type, registry.ListOutputTypes()))
	}
	module, err := constructor(cfg)
	if err != nil {
		return nil, errhandling.NewConfigurationError(fmt.Sprintf("invalid %s output config", cfg.Type), err)
	}
	return module, nil
}
