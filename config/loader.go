package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PoolPolicy is the deployment-wide default sizing policy for resource
// pools, loaded by Loader and overridden per resource type by whatever
// a resource descriptor supplies explicitly.
type PoolPolicy struct {
	MaxSize        int           `mapstructure:"max_size"`
	MinIdle        int           `mapstructure:"min_idle"`
	IdleTTL        time.Duration `mapstructure:"idle_ttl"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
}

// AutoscalePolicy is the deployment-wide default watermark policy for
// the auto-scaler, loaded by Loader and overridden per pool.
type AutoscalePolicy struct {
	HighWatermark   float64       `mapstructure:"high_watermark"`
	LowWatermark    float64       `mapstructure:"low_watermark"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
	EvaluationEvery time.Duration `mapstructure:"evaluation_every"`
}

// LimiterKind selects which resilience.Limiter implementation a
// deployment should default to — this is how the canonical
// rate-limiter-algorithm open question becomes a runtime decision
// instead of a compile-time one.
type LimiterKind string

const (
	LimiterTokenBucket LimiterKind = "token_bucket"
	LimiterGCRA        LimiterKind = "gcra"
)

// Policy is the full set of layered defaults Loader produces.
type Policy struct {
	Pool       PoolPolicy      `mapstructure:"pool"`
	Autoscale  AutoscalePolicy `mapstructure:"autoscale"`
	RateLimiter LimiterKind    `mapstructure:"rate_limiter"`
}

func defaultPolicy() Policy {
	return Policy{
		Pool: PoolPolicy{
			MaxSize:        10,
			MinIdle:        0,
			IdleTTL:        5 * time.Minute,
			AcquireTimeout: 30 * time.Second,
		},
		Autoscale: AutoscalePolicy{
			HighWatermark:   0.8,
			LowWatermark:    0.2,
			Cooldown:        time.Minute,
			EvaluationEvery: 10 * time.Second,
		},
		RateLimiter: LimiterTokenBucket,
	}
}

// Loader loads a Policy from layered sources: compiled-in defaults,
// an optional config file, and environment variables prefixed
// NEBULA_ (e.g. NEBULA_POOL_MAX_SIZE), in ascending precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader seeded with Nebula's compiled-in defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("nebula")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultPolicy()
	v.SetDefault("pool.max_size", def.Pool.MaxSize)
	v.SetDefault("pool.min_idle", def.Pool.MinIdle)
	v.SetDefault("pool.idle_ttl", def.Pool.IdleTTL)
	v.SetDefault("pool.acquire_timeout", def.Pool.AcquireTimeout)
	v.SetDefault("autoscale.high_watermark", def.Autoscale.HighWatermark)
	v.SetDefault("autoscale.low_watermark", def.Autoscale.LowWatermark)
	v.SetDefault("autoscale.cooldown", def.Autoscale.Cooldown)
	v.SetDefault("autoscale.evaluation_every", def.Autoscale.EvaluationEvery)
	v.SetDefault("rate_limiter", string(def.RateLimiter))

	return &Loader{v: v}
}

// SetConfigFile points the loader at an explicit config file path
// (yaml, json, toml, ... — whatever viper's format sniffing supports).
// Call Load after SetConfigFile to pick up the file's contents.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// Load reads the configured file (if any set via SetConfigFile) and
// returns the merged Policy: defaults, overridden by file, overridden
// by environment.
func (l *Loader) Load() (Policy, error) {
	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return Policy{}, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var p Policy
	if err := l.v.Unmarshal(&p); err != nil {
		return Policy{}, fmt.Errorf("config: unmarshaling policy: %w", err)
	}

	if err := validatePolicy(p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func validatePolicy(p Policy) error {
	if p.Pool.MaxSize <= 0 {
		return fmt.Errorf("%w: pool.max_size must be positive", ErrInvalidPolicy)
	}
	if p.Autoscale.HighWatermark <= p.Autoscale.LowWatermark {
		return fmt.Errorf("%w: autoscale.high_watermark must exceed low_watermark", ErrInvalidPolicy)
	}
	if p.RateLimiter != LimiterTokenBucket && p.RateLimiter != LimiterGCRA {
		return fmt.Errorf("%w: unknown rate_limiter kind %q", ErrInvalidPolicy, p.RateLimiter)
	}
	return nil
}
