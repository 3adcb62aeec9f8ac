package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PolicyConfig holds operator-tunable product policy: free-tier limits,
// upload caps, and the prompt sanitizer rule table.
type PolicyConfig struct {
	FreeLimits     map[string]int  `mapstructure:"freeLimits"`
	MaxUploadBytes int64           `mapstructure:"maxUploadBytes"`
	SanitizerRules []SanitizerRule `mapstructure:"sanitizerRules"`
}

// SanitizerRule replaces every whole-word occurrence of Terms with Replacement.
type SanitizerRule struct {
	Terms       []string `mapstructure:"terms"`
	Replacement string   `mapstructure:"replacement"`
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		FreeLimits: map[string]int{
			"article":    10,
			"blog-title": 10,
			"image":      1,
		},
		MaxUploadBytes: 5 * 1024 * 1024,
		SanitizerRules: []SanitizerRule{
			{Terms: []string{"student", "child", "kid", "boy", "girl", "teen"}, Replacement: "person"},
			{Terms: []string{"lying", "hurt", "injured", "naked", "bleeding", "crying"}, Replacement: "standing"},
			{Terms: []string{"on the ground", "in bed", "school", "classroom"}, Replacement: "in a bright room"},
			{Terms: []string{"blood", "weapon", "corpse", "dead", "fight"}, Replacement: "object"},
		},
	}
}

// PolicyConfigHolder serves the current policy and swaps it on file change.
type PolicyConfigHolder struct {
	current atomic.Value // holds PolicyConfig
}

func NewPolicyConfigHolder() (*PolicyConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("policy")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/inkwell")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPolicyConfig()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// no policy file, run on defaults
		holder := &PolicyConfigHolder{}
		holder.current.Store(defaults)
		return holder, nil
	}

	cfg := defaults
	if err := v.UnmarshalKey("policy", &cfg); err != nil {
		return nil, err
	}
	if err := validatePolicyConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PolicyConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultPolicyConfig()
		if err := v.UnmarshalKey("policy", &updated); err != nil {
			log.Printf("[policy-config] reload failed: %v", err)
			return
		}
		if err := validatePolicyConfig(updated); err != nil {
			log.Printf("[policy-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[policy-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPolicyHolder wraps a fixed policy, for tests and tooling that do
// not want file watching.
func NewStaticPolicyHolder(cfg PolicyConfig) *PolicyConfigHolder {
	holder := &PolicyConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PolicyConfigHolder) Get() PolicyConfig {
	return h.current.Load().(PolicyConfig)
}

// FreeLimit returns the free-tier limit for an operation type.
// Unknown operations are treated as unmetered for free users.
func (c PolicyConfig) FreeLimit(operation string) (int, bool) {
	limit, ok := c.FreeLimits[operation]
	return limit, ok
}

func validatePolicyConfig(cfg PolicyConfig) error {
	if len(cfg.FreeLimits) == 0 {
		return errors.New("policy.freeLimits cannot be empty")
	}
	for op, limit := range cfg.FreeLimits {
		if limit < 0 {
			return errors.New("policy.freeLimits." + op + " cannot be negative")
		}
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("policy.maxUploadBytes must be positive")
	}
	return nil
}
