package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.World.Width <= 0 || cfg.World.Height <= 0 {
		t.Errorf("world dimensions not positive: %gx%g", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Reproduction.Mode != ModeSexual {
		t.Errorf("default reproduction mode = %q, want %q", cfg.Reproduction.Mode, ModeSexual)
	}
	if cfg.Derived.DT32 != float32(cfg.Physics.DT) {
		t.Errorf("Derived.DT32 = %v, want %v", cfg.Derived.DT32, float32(cfg.Physics.DT))
	}
	if want := cfg.Sensors.Rays + 11; cfg.Derived.NumInputs != want {
		t.Errorf("Derived.NumInputs = %d, want %d", cfg.Derived.NumInputs, want)
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("world:\n  width: 500\nseed: 7\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.World.Width != 500 {
		t.Errorf("overridden width = %g, want 500", cfg.World.Width)
	}
	if cfg.Seed != 7 {
		t.Errorf("overridden seed = %d, want 7", cfg.Seed)
	}
	// Fields absent from the override keep their defaults
	if cfg.World.Height <= 0 {
		t.Errorf("height lost its default: %g", cfg.World.Height)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero world width", func(c *Config) { c.World.Width = 0 }},
		{"negative dt", func(c *Config) { c.Physics.DT = -0.1 }},
		{"start above max", func(c *Config) { c.Energy.Start = c.Energy.Max + 1 }},
		{"bad reproduction mode", func(c *Config) { c.Reproduction.Mode = "budding" }},
		{"mutation rate above one", func(c *Config) { c.Mutation.Rate = 1.5 }},
		{"negative gestation", func(c *Config) { c.Reproduction.Gestation = -1 }},
		{"inverted trait bounds", func(c *Config) { c.Traits.MaxSpeed = Bounds{Min: 10, Max: 5} }},
		{"dream max below min", func(c *Config) { c.Sleep.DreamMin = 5; c.Sleep.DreamMax = 2 }},
		{"too few rays", func(c *Config) { c.Sensors.Rays = 2 }},
		{"zero food sites", func(c *Config) { c.Food.SiteCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Error("Load of missing file should fail")
	}
}
