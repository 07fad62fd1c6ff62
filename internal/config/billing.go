package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds the billing policy knobs that operators may tune
// without a redeploy.
type BillingConfig struct {
	BillNumberTemplate  string        `mapstructure:"billNumberTemplate"`
	DefaultDueDays      int           `mapstructure:"defaultDueDays"`
	PaymentRetryLimit   int           `mapstructure:"paymentRetryLimit"`
	PaymentRetryBackoff time.Duration `mapstructure:"paymentRetryBackoff"`
	OverdueSweepEvery   time.Duration `mapstructure:"overdueSweepEvery"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		BillNumberTemplate:  "BILL-{YYYY}{MM}-{SEQ6}",
		DefaultDueDays:      30,
		PaymentRetryLimit:   3,
		PaymentRetryBackoff: 25 * time.Millisecond,
		OverdueSweepEvery:   time.Minute,
	}
}

// BillingConfigHolder exposes the current billing policy and hot-reloads it
// when the underlying file changes.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/hms/config") // volume-mounted config
	v.AddConfigPath("/etc/hms")            // system config
	v.AddConfigPath(".")                   // current directory (dev mode)

	v.SetEnvPrefix("HMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.billNumberTemplate", defaults.BillNumberTemplate)
		v.SetDefault("billing.defaultDueDays", defaults.DefaultDueDays)
		v.SetDefault("billing.paymentRetryLimit", defaults.PaymentRetryLimit)
		v.SetDefault("billing.paymentRetryBackoff", defaults.PaymentRetryBackoff)
		v.SetDefault("billing.overdueSweepEvery", defaults.OverdueSweepEvery)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config with no file watching.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if strings.TrimSpace(cfg.BillNumberTemplate) == "" {
		return errors.New("billing.billNumberTemplate cannot be empty")
	}
	if cfg.DefaultDueDays < 0 {
		return errors.New("billing.defaultDueDays cannot be negative")
	}
	if cfg.PaymentRetryLimit < 1 {
		return errors.New("billing.paymentRetryLimit must be at least 1")
	}
	return nil
}
