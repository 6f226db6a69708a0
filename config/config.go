// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Reproduction modes.
const (
	ModeSexual  = "sexual"
	ModeAsexual = "asexual"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Population   PopulationConfig   `yaml:"population"`
	Energy       EnergyConfig       `yaml:"energy"`
	Traits       TraitsConfig       `yaml:"traits"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Policy       PolicyConfig       `yaml:"policy"`
	Sleep        SleepConfig        `yaml:"sleep"`
	Environment  EnvironmentConfig  `yaml:"environment"`
	Food         FoodConfig         `yaml:"food"`
	Homes        HomesConfig        `yaml:"homes"`
	Nurture      NurtureConfig      `yaml:"nurture"`
	Sensors      SensorsConfig      `yaml:"sensors"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Seed         int64              `yaml:"seed"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds toroidal world dimensions in world units.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT            float64 `yaml:"dt"`              // Default seconds per tick
	GridCellSize  float64 `yaml:"grid_cell_size"`  // Spatial hash cell size
	BaseThrust    float64 `yaml:"base_thrust"`     // Forward acceleration at full thrust
	LinearDrag    float64 `yaml:"linear_drag"`     // Velocity damping per second
	AngularDrag   float64 `yaml:"angular_drag"`    // Angular velocity damping per second
	MaxTurnTorque float64 `yaml:"max_turn_torque"` // rad/s^2 cap on angular acceleration
}

// PopulationConfig holds initial population parameters.
type PopulationConfig struct {
	Initial   int  `yaml:"initial"`    // Random founder count when adam_eve is false
	AdamEve   bool `yaml:"adam_eve"`   // Start from one male + one female at world center
	TargetPop int  `yaml:"target_pop"` // Soft carrying capacity damping food regrowth
}

// EnergyConfig holds the energy economy.
type EnergyConfig struct {
	Start               float64 `yaml:"start"`
	Max                 float64 `yaml:"max"`
	MetabolismBase      float64 `yaml:"metabolism_base"`       // Drain per second at rest
	MetabolismSpeedCoef float64 `yaml:"metabolism_speed_coef"` // Extra drain per unit speed
	MetabolismBrainCoef float64 `yaml:"metabolism_brain_coef"` // Extra drain per awake decision
	EatRadius           float64 `yaml:"eat_radius"`            // Food pickup radius
	EatRate             float64 `yaml:"eat_rate"`              // Max food units consumed per second
	SleepFactor         float64 `yaml:"sleep_factor"`          // Metabolism multiplier while asleep
	SleepRegen          float64 `yaml:"sleep_regen"`           // Energy regained per second asleep
	HomeRegenBonus      float64 `yaml:"home_regen_bonus"`      // Regen multiplier inside own home
	MaxAge              float64 `yaml:"max_age"`               // Seconds; hard lifespan cutoff
	SenescenceAge       float64 `yaml:"senescence_age"`        // Seconds; extra drain beyond this age
	SenescenceDrain     float64 `yaml:"senescence_drain"`      // Drain ramp per second past senescence_age
}

// Bounds clamp a heritable trait after mutation.
type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// TraitsConfig holds heritable trait bounds. Mutated gene values are clamped
// into these ranges when the phenotype is derived.
type TraitsConfig struct {
	VisionRange     Bounds `yaml:"vision_range"`      // Perception distance
	VisionHalfAngle Bounds `yaml:"vision_half_angle"` // Radians, half the field of view
	MaxSpeed        Bounds `yaml:"max_speed"`         // Speed clamp
	Metabolism      Bounds `yaml:"metabolism"`        // Metabolic rate multiplier
	Fertility       Bounds `yaml:"fertility"`         // Energy fraction required to reproduce
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	Mode          string  `yaml:"mode"`           // "sexual" or "asexual"
	MatingRadius  float64 `yaml:"mating_radius"`  // Proximity required to queue a mating event
	IntentGate    float64 `yaml:"intent_gate"`    // Policy mate-intent threshold
	ParentKeep    float64 `yaml:"parent_keep"`    // Fraction of energy a parent retains
	ChildTake     float64 `yaml:"child_take"`     // Fraction of deducted parent energy given to the child
	Cooldown      float64 `yaml:"cooldown"`       // Seconds between reproductions
	Gestation     float64 `yaml:"gestation"`      // Seconds carried before birth (0 = immediate)
	SpawnOffset   float64 `yaml:"spawn_offset"`   // Child placement jitter
	HeadingJitter float64 `yaml:"heading_jitter"` // Child heading jitter (radians)
}

// MutationConfig holds genome mutation parameters.
type MutationConfig struct {
	Rate      float64 `yaml:"rate"`      // Per-gene mutation probability
	Magnitude float64 `yaml:"magnitude"` // Gaussian noise sigma
}

// PolicyConfig holds the decision-function parameters.
type PolicyConfig struct {
	InheritanceWeight float64 `yaml:"inheritance_weight"` // Parent-average vs genome-fresh blend [0,1]
	MemorySize        int     `yaml:"memory_size"`        // Episodic ring buffer capacity
	DreamSteps        int     `yaml:"dream_steps"`        // Replay updates per second of dreaming
	LearningRate      float64 `yaml:"learning_rate"`      // Reward-modulated update step
	LearningDecay     float64 `yaml:"learning_decay"`     // Recurrent weight decay per update
	DevAgeHalf        float64 `yaml:"dev_age_half"`       // Age (s) at which the learning scale halves
	DevLearningMin    float64 `yaml:"dev_learning_min"`   // Learning scale floor for old organisms
	ReflexBlend       float64 `yaml:"reflex_blend"`       // Weight of the reflex steer mixed into turn
}

// SleepConfig holds sleep/dream cycle parameters.
type SleepConfig struct {
	PressureRate float64 `yaml:"pressure_rate"` // Pressure gained per awake second
	RecoveryRate float64 `yaml:"recovery_rate"` // Pressure shed per asleep second
	Threshold    float64 `yaml:"threshold"`     // Drive above this forces sleep
	IntentGate   float64 `yaml:"intent_gate"`   // Policy sleep-intent threshold
	NightWeight  float64 `yaml:"night_weight"`  // Circadian share of the sleep drive
	MinSleep     float64 `yaml:"min_sleep"`     // Seconds asleep before dreaming may start
	DreamMin     float64 `yaml:"dream_min"`     // Minimum dream duration (s)
	DreamMax     float64 `yaml:"dream_max"`     // Maximum dream duration (s)
}

// EnvironmentConfig holds the weather and season model.
type EnvironmentConfig struct {
	DayLength          float64 `yaml:"day_length"`           // Seconds per day/night cycle
	YearLength         float64 `yaml:"year_length"`          // Seconds per seasonal cycle
	BaseTempEquator    float64 `yaml:"base_temp_equator"`    // Celsius at the equator
	BaseTempPole       float64 `yaml:"base_temp_pole"`       // Celsius at the poles
	SeasonalVarEquator float64 `yaml:"seasonal_var_equator"` // Seasonal amplitude at the equator
	SeasonalVarPole    float64 `yaml:"seasonal_var_pole"`    // Seasonal amplitude at the poles
	BasePrecipitation  float64 `yaml:"base_precipitation"`   // [0,1]
	PrecipVariation    float64 `yaml:"precip_variation"`     // Seasonal precipitation amplitude
	PrecipPhase        float64 `yaml:"precip_phase"`         // Phase offset of the precipitation cycle
	OptimalGrowthTemp  float64 `yaml:"optimal_growth_temp"`  // Celsius where regrowth peaks
	TempTolerance      float64 `yaml:"temp_tolerance"`       // Width of the growth temperature peak
	BaseRegrowth       float64 `yaml:"base_regrowth"`        // Regrowth units per second at optimum
	GrowthNoise        float64 `yaml:"growth_noise"`         // Bounded uniform noise on regrowth
}

// FoodConfig holds the food field parameters.
type FoodConfig struct {
	SiteCount    int     `yaml:"site_count"`    // Number of food sites
	SiteCapacity float64 `yaml:"site_capacity"` // Base per-site capacity
	NoiseScale   float64 `yaml:"noise_scale"`   // Simplex frequency for capacity variation
	RichnessMin  float64 `yaml:"richness_min"`  // Capacity floor as a fraction of site_capacity
}

// HomesConfig holds shelter parameters.
type HomesConfig struct {
	Enabled    bool    `yaml:"enabled"`
	BuildCost  float64 `yaml:"build_cost"`  // Energy paid to establish a home
	Radius     float64 `yaml:"radius"`      // Shelter/nurture radius
	IntentGate float64 `yaml:"intent_gate"` // Policy build-intent threshold
}

// NurtureConfig holds parental care parameters.
type NurtureConfig struct {
	DependencyAge float64 `yaml:"dependency_age"` // Seconds a child stays dependent
	FeedShare     float64 `yaml:"feed_share"`     // Fraction of caregiver surplus donated per second
	OrphanDrain   float64 `yaml:"orphan_drain"`   // Extra drain per second for uncared dependents
}

// SensorsConfig holds sensation-vector parameters.
type SensorsConfig struct {
	Rays         int     `yaml:"rays"`          // Field-of-view sample rays
	ThreatFactor float64 `yaml:"threat_factor"` // Energy ratio above which a neighbor reads as a threat
}

// TelemetryConfig holds stats window parameters.
type TelemetryConfig struct {
	WindowSec float64 `yaml:"window_sec"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	WorldW32  float32
	WorldH32  float32
	NumInputs int // Sensation vector width fed to the policy
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The returned config has
// been validated; an invalid config yields an error and no Config.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Validate checks configuration invariants. Constructing a world from an
// invalid config must fail outright, so every violation is an error here.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("config: world dimensions must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("config: physics.dt must be positive, got %g", c.Physics.DT)
	}
	if c.Physics.GridCellSize <= 0 {
		return fmt.Errorf("config: physics.grid_cell_size must be positive, got %g", c.Physics.GridCellSize)
	}
	if c.Energy.Max <= 0 {
		return fmt.Errorf("config: energy.max must be positive, got %g", c.Energy.Max)
	}
	if c.Energy.Start <= 0 || c.Energy.Start > c.Energy.Max {
		return fmt.Errorf("config: energy.start must be in (0, %g], got %g", c.Energy.Max, c.Energy.Start)
	}
	if c.Energy.MaxAge <= 0 {
		return fmt.Errorf("config: energy.max_age must be positive, got %g", c.Energy.MaxAge)
	}
	if c.Population.Initial <= 0 && !c.Population.AdamEve {
		return fmt.Errorf("config: population.initial must be positive, got %d", c.Population.Initial)
	}
	if c.Reproduction.Mode != ModeSexual && c.Reproduction.Mode != ModeAsexual {
		return fmt.Errorf("config: reproduction.mode must be %q or %q, got %q", ModeSexual, ModeAsexual, c.Reproduction.Mode)
	}
	if c.Reproduction.ParentKeep < 0 || c.Reproduction.ParentKeep > 1 {
		return fmt.Errorf("config: reproduction.parent_keep must be in [0,1], got %g", c.Reproduction.ParentKeep)
	}
	if c.Reproduction.Gestation < 0 {
		return fmt.Errorf("config: reproduction.gestation must be non-negative, got %g", c.Reproduction.Gestation)
	}
	if c.Mutation.Rate < 0 || c.Mutation.Rate > 1 {
		return fmt.Errorf("config: mutation.rate must be in [0,1], got %g", c.Mutation.Rate)
	}
	if c.Mutation.Magnitude < 0 {
		return fmt.Errorf("config: mutation.magnitude must be non-negative, got %g", c.Mutation.Magnitude)
	}
	if c.Policy.InheritanceWeight < 0 || c.Policy.InheritanceWeight > 1 {
		return fmt.Errorf("config: policy.inheritance_weight must be in [0,1], got %g", c.Policy.InheritanceWeight)
	}
	if c.Policy.MemorySize <= 0 {
		return fmt.Errorf("config: policy.memory_size must be positive, got %d", c.Policy.MemorySize)
	}
	if c.Environment.DayLength <= 0 || c.Environment.YearLength <= 0 {
		return fmt.Errorf("config: environment cycle lengths must be positive, got day=%g year=%g",
			c.Environment.DayLength, c.Environment.YearLength)
	}
	if c.Food.SiteCount <= 0 {
		return fmt.Errorf("config: food.site_count must be positive, got %d", c.Food.SiteCount)
	}
	if c.Food.SiteCapacity <= 0 {
		return fmt.Errorf("config: food.site_capacity must be positive, got %g", c.Food.SiteCapacity)
	}
	if c.Sleep.MinSleep < 0 || c.Sleep.DreamMin < 0 || c.Sleep.DreamMax < c.Sleep.DreamMin {
		return fmt.Errorf("config: sleep durations invalid: min_sleep=%g dream_min=%g dream_max=%g",
			c.Sleep.MinSleep, c.Sleep.DreamMin, c.Sleep.DreamMax)
	}
	if c.Sensors.Rays < 3 {
		return fmt.Errorf("config: sensors.rays must be at least 3, got %d", c.Sensors.Rays)
	}
	for _, tb := range []struct {
		name string
		b    Bounds
	}{
		{"traits.vision_range", c.Traits.VisionRange},
		{"traits.vision_half_angle", c.Traits.VisionHalfAngle},
		{"traits.max_speed", c.Traits.MaxSpeed},
		{"traits.metabolism", c.Traits.Metabolism},
		{"traits.fertility", c.Traits.Fertility},
	} {
		if tb.b.Min > tb.b.Max || math.IsNaN(tb.b.Min) || math.IsNaN(tb.b.Max) {
			return fmt.Errorf("config: %s bounds invalid: [%g, %g]", tb.name, tb.b.Min, tb.b.Max)
		}
	}
	if c.Traits.VisionHalfAngle.Max > math.Pi {
		return fmt.Errorf("config: traits.vision_half_angle.max must be at most pi, got %g", c.Traits.VisionHalfAngle.Max)
	}

	// Callers may tweak fields after Load; keep derived values in sync with
	// whatever passed validation.
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	// Ray hit distances plus scalar channels (energy, sleep pressure,
	// day/night, season phase, temperature, food gradient x/y,
	// nearest-mate dist, nearest-threat dist, speed, bias).
	c.Derived.NumInputs = c.Sensors.Rays + 11
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
