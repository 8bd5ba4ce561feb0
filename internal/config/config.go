package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Penalties are the soft-constraint costs for availability cells.
// Tolerated must cost less than Undecided, and both must be positive.
type Penalties struct {
	Tolerated int `mapstructure:"tolerated"` // availability code 2
	Undecided int `mapstructure:"undecided"` // availability code 3
}

// Weights are the objective term multipliers.
type Weights struct {
	Availability  float64 `mapstructure:"availability"`
	GapRule       float64 `mapstructure:"gap_rule"`
	FinishBuffer  float64 `mapstructure:"finish_buffer"`
	NormalPlusOne float64 `mapstructure:"normal_plus_one"`
	LoadBalance   float64 `mapstructure:"load_balance"`
}

// Solver controls the MILP backend.
type Solver struct {
	TimeLimitSec int     `mapstructure:"time_limit_sec"`
	MIPGap       float64 `mapstructure:"mip_gap"`
	Threads      int     `mapstructure:"threads"` // 0 = auto
}

// Config is the full configuration surface of one solve invocation.
type Config struct {
	DayStartHour    int    `mapstructure:"day_start_hour"`
	SlotsPerDay     int    `mapstructure:"slots_per_day"`
	MeetingSlots    int    `mapstructure:"meeting_slots"`
	LatestStartSlot int    `mapstructure:"latest_start_slot"`
	TimezoneName    string `mapstructure:"timezone"`

	Penalties Penalties `mapstructure:"penalties"`
	Weights   Weights   `mapstructure:"weights"`
	Solver    Solver    `mapstructure:"solver"`
}

// Default returns the standard configuration: a 09:00–22:00 working day in
// 30-minute slots, 2-hour meetings, latest start 20:00.
func Default() Config {
	return Config{
		DayStartHour:    9,
		SlotsPerDay:     26,
		MeetingSlots:    4,
		LatestStartSlot: 22,
		TimezoneName:    "Asia/Tokyo",
		Penalties:       Penalties{Tolerated: 1, Undecided: 2},
		Weights: Weights{
			Availability:  1.0,
			GapRule:       0.5,
			FinishBuffer:  0.8,
			NormalPlusOne: 0.4,
			LoadBalance:   1.5,
		},
		Solver: Solver{TimeLimitSec: 60, MIPGap: 0.01, Threads: 0},
	}
}

// Load merges an optional config file and PLENUM_* environment overrides
// over the defaults. An empty path loads defaults plus env only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PLENUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.SlotsPerDay < 1 || c.SlotsPerDay > 99 {
		return fmt.Errorf("slots_per_day must be in 1..99, got %d", c.SlotsPerDay)
	}
	if c.MeetingSlots < 1 {
		return fmt.Errorf("meeting_slots must be positive, got %d", c.MeetingSlots)
	}
	if c.LatestStartSlot < 0 || c.LatestStartSlot+c.MeetingSlots > c.SlotsPerDay {
		return fmt.Errorf("latest_start_slot %d leaves no room for a %d-slot meeting in a %d-slot day",
			c.LatestStartSlot, c.MeetingSlots, c.SlotsPerDay)
	}
	if c.Penalties.Tolerated < 1 || c.Penalties.Undecided <= c.Penalties.Tolerated {
		return fmt.Errorf("penalties must satisfy undecided > tolerated >= 1, got %d/%d",
			c.Penalties.Tolerated, c.Penalties.Undecided)
	}
	if c.Solver.MIPGap < 0 {
		return fmt.Errorf("mip_gap must be nonnegative, got %g", c.Solver.MIPGap)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("day_start_hour", d.DayStartHour)
	v.SetDefault("slots_per_day", d.SlotsPerDay)
	v.SetDefault("meeting_slots", d.MeetingSlots)
	v.SetDefault("latest_start_slot", d.LatestStartSlot)
	v.SetDefault("timezone", d.TimezoneName)
	v.SetDefault("penalties.tolerated", d.Penalties.Tolerated)
	v.SetDefault("penalties.undecided", d.Penalties.Undecided)
	v.SetDefault("weights.availability", d.Weights.Availability)
	v.SetDefault("weights.gap_rule", d.Weights.GapRule)
	v.SetDefault("weights.finish_buffer", d.Weights.FinishBuffer)
	v.SetDefault("weights.normal_plus_one", d.Weights.NormalPlusOne)
	v.SetDefault("weights.load_balance", d.Weights.LoadBalance)
	v.SetDefault("solver.time_limit_sec", d.Solver.TimeLimitSec)
	v.SetDefault("solver.mip_gap", d.Solver.MIPGap)
	v.SetDefault("solver.threads", d.Solver.Threads)
}
