package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/papertrade/gopaper/internal/pricing"
	"github.com/papertrade/gopaper/internal/server"
	"github.com/papertrade/gopaper/internal/services"
	"github.com/papertrade/gopaper/internal/store"
	"github.com/papertrade/gopaper/pkg/config"
	"github.com/papertrade/gopaper/pkg/logger"
	"github.com/papertrade/gopaper/pkg/secretstore"
	"github.com/papertrade/gopaper/pkg/shutdown"
)

const tokenSecretKey = "auth/token_secret"

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		configPath = flag.String("config", getenv("GOPAPER_CONFIG", ""), "YAML config file (optional)")
		listenAddr = flag.String("listen", getenv("GOPAPER_LISTEN", ""), "HTTP listen address (overrides config)")
		dbPath     = flag.String("db", getenv("GOPAPER_DB", ""), "SQLite db file path (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *listenAddr != "" {
		cfg.Listen = *listenAddr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}

	secrets, err := openSecrets(cfg.Auth.SecretStorePath)
	if err != nil {
		log.Fatalf("open secret store failed: %v", err)
	}

	tokenSecret, err := resolveTokenSecret(secrets)
	if err != nil {
		log.Fatalf("resolve token secret failed: %v", err)
	}

	oracle, err := buildOracle(cfg.Oracle, secrets)
	if err != nil {
		log.Fatalf("init price oracle failed: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store failed: %v", err)
	}

	startingBalance, err := decimal.NewFromString(cfg.Ledger.StartingBalance)
	if err != nil {
		log.Fatalf("bad ledger.starting_balance %q: %v", cfg.Ledger.StartingBalance, err)
	}

	svc := services.NewTradingService(st, oracle, services.Options{
		StartingBalance: startingBalance,
		QuoteTimeout:    time.Duration(cfg.Oracle.QuoteTimeoutSeconds) * time.Second,
	})
	tokenizer := server.NewHMACTokenizer(tokenSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(svc, tokenizer).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	mgr := shutdown.NewManager()
	mgr.OnShutdown(func(ctx context.Context) { _ = httpSrv.Shutdown(ctx) })
	mgr.OnShutdown(func(_ context.Context) { _ = st.Close() })
	mgr.OnShutdown(func(_ context.Context) { _ = secrets.Close() })

	go func() {
		logger.Infof("gopaper listening on %s (oracle=%s)", cfg.Listen, cfg.Oracle.Mode)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mgr.Shutdown(ctx)

	fmt.Println("server stopped")
}

// openSecrets opens the Badger secret store, encrypted when
// GOPAPER_SECRETSTORE_KEY (32 bytes, hex or base64) is set.
func openSecrets(path string) (*secretstore.Store, error) {
	encKey, err := secretstore.ParseKey(os.Getenv("GOPAPER_SECRETSTORE_KEY"))
	if err != nil {
		return nil, err
	}
	return secretstore.Open(secretstore.OpenOptions{Path: path, EncryptionKey: encKey})
}

// resolveTokenSecret looks up the auth signing secret: env var first, then
// the secret store. A fresh deployment gets a random secret persisted so
// tokens survive restarts.
func resolveTokenSecret(secrets *secretstore.Store) ([]byte, error) {
	if v := os.Getenv("GOPAPER_TOKEN_SECRET"); v != "" {
		return []byte(v), nil
	}
	stored, found, err := secrets.GetString(tokenSecretKey)
	if err != nil {
		return nil, err
	}
	if found {
		return []byte(stored), nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	secret := hex.EncodeToString(buf)
	if err := secrets.SetString(tokenSecretKey, secret); err != nil {
		return nil, err
	}
	logger.Warn("no token secret configured, generated and stored a new one")
	return []byte(secret), nil
}

// buildOracle assembles the configured quote source. The http oracle gets a
// short read-through cache so a burst of trades on one symbol doesn't hammer
// the upstream.
func buildOracle(cfg config.Oracle, secrets *secretstore.Store) (pricing.Oracle, error) {
	switch cfg.Mode {
	case "static":
		return pricing.NewStaticOracleFromStrings(cfg.StaticPrices)
	case "http":
		apiKey := os.Getenv("GOPAPER_ORACLE_API_KEY")
		if apiKey == "" {
			stored, found, err := secrets.GetString("oracle/api_key")
			if err != nil {
				return nil, err
			}
			if found {
				apiKey = stored
			}
		}
		var oracle pricing.Oracle = pricing.NewHTTPOracle(pricing.HTTPOracleConfig{
			BaseURL:       cfg.BaseURL,
			APIKey:        apiKey,
			Timeout:       time.Duration(cfg.QuoteTimeoutSeconds) * time.Second,
			RatePerSecond: cfg.RatePerSecond,
		})
		if cfg.CacheTTLSeconds > 0 {
			oracle = pricing.NewCachedOracle(oracle, time.Duration(cfg.CacheTTLSeconds)*time.Second)
		}
		return oracle, nil
	default:
		return nil, fmt.Errorf("unknown oracle mode %q", cfg.Mode)
	}
}
