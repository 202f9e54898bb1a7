// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package seed loads starter personas from YAML and inserts them into an
// empty persona store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/persona-assess/models"
)

//go:embed personas.yaml
var defaultPersonas []byte

type file struct {
	Personas []models.PersonaRequest `yaml:"personas"`
}

// PersonaStore is the part of the persona store seeding needs.
type PersonaStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, req models.PersonaRequest) (*models.Persona, error)
}

// Parse decodes a persona list from YAML.
func Parse(data []byte) ([]models.PersonaRequest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("seed: payload is empty")
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode personas: %w", err)
	}
	return f.Personas, nil
}

// Load reads personas from path, or the built-in set when path is empty.
func Load(path string) ([]models.PersonaRequest, error) {
	if path == "" {
		return Parse(defaultPersonas)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	personas, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return personas, nil
}

// Apply creates personas only when the store holds none. It returns how
// many were inserted.
func Apply(ctx context.Context, store PersonaStore, personas []models.PersonaRequest) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Debug("persona store not empty, skipping seed", "count", n)
		return 0, nil
	}

	for i, req := range personas {
		if _, err := store.Create(ctx, req); err != nil {
			return i, fmt.Errorf("seed: persona %q: %w", req.Title, err)
		}
	}
	slog.Info("seeded personas", "count", len(personas))
	return len(personas), nil
}
