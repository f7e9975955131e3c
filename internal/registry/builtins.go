package registry

import (
	"fmt"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/filter"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/input"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/output"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

func init() {
	RegisterBuiltins()
}

func configOf(cfg *ratings.ModuleConfig) map[string]interface{} {
	if cfg == nil || cfg.Config == nil {
		return map[string]interface{}{}
	}
	return cfg.Config
}

func registerBuiltinInputModules() {
	RegisterInput("csv", func(cfg *ratings.ModuleConfig) (input.Module, error) {
		c, err := input.ParseCSVConfig(configOf(cfg))
		if err != nil {
			return nil, err
		}
		return input.NewCSVFromConfig(c)
	})

	RegisterInput("json", func(cfg *ratings.ModuleConfig) (input.Module, error) {
		c, err := input.ParseJSONConfig(configOf(cfg))
		if err != nil {
			return nil, err
		}
		return input.NewJSONFromConfig(c)
	})

	RegisterInput("static", func(cfg *ratings.ModuleConfig) (input.Module, error) {
		return input.NewStaticFromConfig(configOf(cfg))
	})
}

func registerBuiltinFilterModules() {
	RegisterFilter("dropMissing", func(cfg ratings.ModuleConfig, _ int) (filter.Module, error) {
		return filter.NewDropMissingFromConfig(filter.ParseDropMissingConfig(configOf(&cfg))), nil
	})

	RegisterFilter("numeric", func(cfg ratings.ModuleConfig, index int) (filter.Module, error) {
		c, err := filter.ParseNumericConfig(configOf(&cfg))
		if err != nil {
			return nil, fmt.Errorf("invalid numeric config at index %d: %w", index, err)
		}
		module, err := filter.NewNumericFromConfig(c)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric config at index %d: %w", index, err)
		}
		return module, nil
	})

	RegisterFilter("decade", func(cfg ratings.ModuleConfig, _ int) (filter.Module, error) {
		return filter.NewDecadeFromConfig(filter.ParseDecadeConfig(configOf(&cfg))), nil
	})

	RegisterFilter("remove", func(cfg ratings.ModuleConfig, index int) (filter.Module, error) {
		c, err := filter.ParseRemoveConfig(configOf(&cfg))
		if err != nil {
			return nil, fmt.Errorf("invalid remove config at index %d: %w", index, err)
		}
		module, err := filter.NewRemoveFromConfig(c)
		if err != nil {
			return nil, fmt.Errorf("invalid remove config at index %d: %w", index, err)
		}
		return module, nil
	})

	RegisterFilter("mapping", func(cfg ratings.ModuleConfig, index int) (filter.Module, error) {
		c, err := filter.ParseMappingConfig(configOf(&cfg))
		if err != nil {
			return nil, fmt.Errorf("invalid mapping config at index %d: %w", index, err)
		}
		module, err := filter.NewMappingFromConfig(c)
		if err != nil {
			return nil, fmt.Errorf("invalid mapping config at index %d: %w", index, err)
		}
		return module, nil
	})

	RegisterFilter("condition", func(cfg ratings.ModuleConfig, index int) (filter.Module, error) {
		c, err := filter.ParseConditionConfig(configOf(&cfg))
		if err != nil {
			return nil, fmt.Errorf("invalid condition config at index %d: %w", index, err)
		}
		module, err := filter.NewConditionFromConfig(c)
		if err != nil {
			return nil, fmt.Errorf("invalid condition config at index %d: %w", index, err)
		}
		return module, nil
	})

	RegisterFilter("script", func(cfg ratings.ModuleConfig, index int) (filter.Module, error) {
		c, err := filter.ParseScriptConfig(configOf(&cfg))
		if err != nil {
			return nil, fmt.Errorf("invalid script config at index %d: %w", index, err)
		}
		module, err := filter.NewScriptFromConfig(c)
		if err != nil {
			return nil, fmt.Errorf("invalid script config at index %d: %w", index, err)
		}
		return module, nil
	})
}

func registerBuiltinOutputModules() {
	RegisterOutput("text", func(cfg *ratings.ModuleConfig) (output.Module, error) {
		return output.NewTextFromConfig(output.ParseTextConfig(configOf(cfg)))
	})

	RegisterOutput("json", func(cfg *ratings.ModuleConfig) (output.Module, error) {
		return output.NewJSONFromConfig(output.ParseJSONConfig(configOf(cfg)))
	})

	RegisterOutput("charts", func(cfg *ratings.ModuleConfig) (output.Module, error) {
		return output.NewChartsFromConfig(output.ParseChartsConfig(configOf(cfg)))
	})
}
