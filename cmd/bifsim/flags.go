package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/viz"
)

// baseConfig is the starting config for model: its first preset, or the
// defaults when it has none.
func baseConfig(model string) *config.Config {
	if names := config.ListPresets(model); len(names) > 0 {
		return config.GetPreset(model, names[0])
	}
	cfg := config.DefaultConfig()
	cfg.Model = model
	return cfg
}

// parseVector reads "1, 2.5, -3".
func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad component %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseAssignments reads name=value pairs. Later pairs win.
func parseAssignments(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%q: want name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

// resolveVar maps a --var value to a plot component: empty selects the first
// variable, "p" the parameter, otherwise a variable name or index.
func resolveVar(s string, vars []string) (int, string, error) {
	switch s {
	case "":
		if len(vars) == 0 {
			return 0, "x0", nil
		}
		return 0, vars[0], nil
	case "p":
		return viz.ParamComponent, "p", nil
	}
	for i, v := range vars {
		if v == s {
			return i, v, nil
		}
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || (len(vars) > 0 && i >= len(vars)) {
		return 0, "", fmt.Errorf("unknown variable %q (have %v): %w", s, vars, dynamo.ErrInvalidParameter)
	}
	if i < len(vars) {
		return i, vars[i], nil
	}
	return i, fmt.Sprintf("x%d", i), nil
}

func formatVector(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatState(x dynamo.State, vars []string) string {
	parts := make([]string, len(x))
	for i, v := range x {
		name := fmt.Sprintf("x%d", i)
		if i < len(vars) {
			name = vars[i]
		}
		parts[i] = fmt.Sprintf("%s=%.6g", name, v)
	}
	return strings.Join(parts, " ")
}
