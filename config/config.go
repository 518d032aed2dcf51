// Package config loads the application configuration from a yaml file or
// command-line flags.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/alpinex/alpinex/internal/domain"
)

// Config runtime configuration of the exchange demo.
type Config struct {
	// ListenAddr address the web server binds to.
	ListenAddr string
	// Pair trading pair shown when the session starts.
	Pair domain.Pair
	// TickInterval cadence of the simulated price feed.
	TickInterval time.Duration
	// BookRefreshInterval cadence of the websocket market stream.
	BookRefreshInterval time.Duration
	// LiveData enables re-anchoring the simulator at Binance quotes.
	LiveData bool
	// PollPriceInterval cadence of the live quote poller.
	PollPriceInterval time.Duration
	// Register forces the onboarding wizard on startup.
	Register bool
	// TLSDomains enables AutoTLS for these domains when non-empty.
	TLSDomains []string
	// CertCacheDir directory for cached ACME certificates.
	CertCacheDir string
}

type configTmp struct {
	ListenAddr          string        `yaml:"listen_addr"`
	Pair                string        `yaml:"pair"`
	TickInterval        time.Duration `yaml:"tick_interval"`
	BookRefreshInterval time.Duration `yaml:"book_refresh_interval"`
	LiveData            bool          `yaml:"live_data"`
	PollPriceInterval   time.Duration `yaml:"poll_price_interval"`
	TLSDomains          []string      `yaml:"tls_domains,omitempty"`
	CertCacheDir        string        `yaml:"cert_cache_dir,omitempty"`
}

func defaults() Config {
	return Config{
		ListenAddr:          ":8080",
		Pair:                domain.Pair{Base: "BTC", Quote: "USDT"},
		TickInterval:        2 * time.Second,
		BookRefreshInterval: 500 * time.Millisecond,
		PollPriceInterval:   10 * time.Second,
		CertCacheDir:        "cert-cache",
	}
}

// Get reads configuration from -config yaml when given, otherwise from flags.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	addr := flag.String("addr", ":8080", "web server listen address")
	pairFlag := flag.String("pair", "BTC/USDT", "initial trading pair, example: BTC/USDT")
	tick := flag.Duration("tickinterval", 2*time.Second, "simulated price tick interval")
	book := flag.Duration("bookrefresh", 500*time.Millisecond, "order book refresh interval")
	live := flag.Bool("livedata", false, "anchor simulated prices at live Binance quotes")
	poll := flag.Duration("pollpriceinterval", 10*time.Second, "live quote poll interval")
	register := flag.Bool("register", false, "run the account creation wizard before starting")
	flag.Parse()

	if *configPath != "" {
		cfg, err := getYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Register = *register
		return cfg, nil
	}

	pair, err := domain.ParsePair(*pairFlag)
	if err != nil {
		return Config{}, errors.Wrapf(err, "invalid --pair provided, --pair=%s", *pairFlag)
	}

	cfg := defaults()
	cfg.ListenAddr = *addr
	cfg.Pair = pair
	cfg.TickInterval = *tick
	cfg.BookRefreshInterval = *book
	cfg.LiveData = *live
	cfg.PollPriceInterval = *poll
	cfg.Register = *register

	if cfg.TickInterval <= 0 {
		return Config{}, errors.New("tick interval must be positive")
	}
	return cfg, nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "parse yaml config")
	}

	cfg := defaults()
	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.Pair != "" {
		pair, err := domain.ParsePair(tmp.Pair)
		if err != nil {
			return Config{}, errors.Wrapf(err, "incorrect 'pair' param in yaml config: %s", tmp.Pair)
		}
		cfg.Pair = pair
	}
	if tmp.TickInterval > 0 {
		cfg.TickInterval = tmp.TickInterval
	}
	if tmp.BookRefreshInterval > 0 {
		cfg.BookRefreshInterval = tmp.BookRefreshInterval
	}
	if tmp.PollPriceInterval > 0 {
		cfg.PollPriceInterval = tmp.PollPriceInterval
	}
	cfg.LiveData = tmp.LiveData
	cfg.TLSDomains = tmp.TLSDomains
	if tmp.CertCacheDir != "" {
		cfg.CertCacheDir = tmp.CertCacheDir
	}

	return cfg, nil
}
