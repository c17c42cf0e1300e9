package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CreditPackage is one purchasable credit bundle. The key -> credits mapping
// must match what the checkout flow promises, because the webhook falls back
// to it when event metadata omits the credit amount.
type CreditPackage struct {
	Key       string `mapstructure:"key"`
	Credits   int64  `mapstructure:"credits"`
	ProductID string `mapstructure:"productId"`
}

func DefaultCreditPackages() []CreditPackage {
	return []CreditPackage{
		{Key: "starter", Credits: 80, ProductID: "prod_starter_80"},
		{Key: "growth", Credits: 200, ProductID: "prod_growth_200"},
		{Key: "pro", Credits: 450, ProductID: "prod_pro_450"},
	}
}

// PackageHolder serves the current credit package table. The table reloads
// from packages.yml without a restart.
type PackageHolder struct {
	current atomic.Value // holds map[string]CreditPackage
}

func NewPackageHolder() (*PackageHolder, error) {
	v := viper.New()

	v.SetConfigName("packages")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/dreamnest/config")
	v.AddConfigPath("/etc/dreamnest")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DREAMNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("packages", DefaultCreditPackages())
	}

	var pkgs []CreditPackage
	if err := v.UnmarshalKey("packages", &pkgs); err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		pkgs = DefaultCreditPackages()
	}
	if err := validatePackages(pkgs); err != nil {
		return nil, err
	}

	holder := &PackageHolder{}
	holder.current.Store(indexPackages(pkgs))

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated []CreditPackage
		if err := v.UnmarshalKey("packages", &updated); err != nil {
			log.Printf("[packages-config] reload failed: %v", err)
			return
		}
		if err := validatePackages(updated); err != nil {
			log.Printf("[packages-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(indexPackages(updated))
		log.Printf("[packages-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPackageHolder builds a holder from a fixed table, for tests.
func NewStaticPackageHolder(pkgs []CreditPackage) *PackageHolder {
	holder := &PackageHolder{}
	holder.current.Store(indexPackages(pkgs))
	return holder
}

// Resolve returns the package for a key, if configured.
func (h *PackageHolder) Resolve(key string) (CreditPackage, bool) {
	table := h.current.Load().(map[string]CreditPackage)
	pkg, ok := table[strings.TrimSpace(key)]
	return pkg, ok
}

// Credits returns the credit amount the key maps to, the webhook fallback path.
func (h *PackageHolder) Credits(key string) (int64, bool) {
	pkg, ok := h.Resolve(key)
	if !ok {
		return 0, false
	}
	return pkg.Credits, true
}

func indexPackages(pkgs []CreditPackage) map[string]CreditPackage {
	table := make(map[string]CreditPackage, len(pkgs))
	for _, pkg := range pkgs {
		table[pkg.Key] = pkg
	}
	return table
}

func validatePackages(pkgs []CreditPackage) error {
	if len(pkgs) == 0 {
		return errors.New("packages cannot be empty")
	}
	seen := make(map[string]struct{}, len(pkgs))
	for _, pkg := range pkgs {
		key := strings.TrimSpace(pkg.Key)
		if key == "" {
			return errors.New("package key cannot be empty")
		}
		if _, dup := seen[key]; dup {
			return errors.New("duplicate package key " + key)
		}
		seen[key] = struct{}{}
		if pkg.Credits <= 0 {
			return errors.New("package " + key + " must grant positive credits")
		}
		if strings.TrimSpace(pkg.ProductID) == "" {
			return errors.New("package " + key + " is missing a product id")
		}
	}
	return nil
}
