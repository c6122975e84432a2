package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"replicate-gate/concurrency"
	"replicate-gate/concurrency/application"
	"replicate-gate/concurrency/infra"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Demo de uso: vários workers de lote no mesmo processo dividindo o gate
// global da conta, com endpoint /status para monitorar enquanto roda.
//
// Credenciais via REPLICATE_API_TOKEN / REPLICATE_GLOBAL_MAX_CONCURRENT.
func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	opts := []concurrency.Option{concurrency.WithInstanceLabel(cfg.instance)}

	var rdb *redis.Client
	if cfg.statsEnabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		opts = append(opts, concurrency.WithStatsStore(infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackWorkers(cfg.statsTrackWorkers),
		)))
	}

	manager, err := concurrency.GetOrCreate("", 0, opts...)
	if err != nil {
		log.Fatalf("manager error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var pace *infra.PaceStore
	if cfg.paceRPS > 0 {
		pace = infra.NewPaceStore(cfg.paceRPS, cfg.paceBurst)
		pace.StartJanitor(ctx)
	}

	mux := http.NewServeMux()
	mux.Handle("/status", concurrency.StatusHandler(manager))

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Infof("status endpoint listening on %s", cfg.listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("status server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("workers=%d jobs/worker=%d hold=%s model=%q", cfg.workers, cfg.jobsPerWorker, cfg.jobDuration, cfg.model)
	log.Infof("stats: enabled=%v redisAddr=%q bucket=%q trackWorkers=%v", cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsBucket, cfg.statsTrackWorkers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runWorkers(ctx, cfg, manager, pace)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("interrupted, waiting workers to drain")
		<-done
	}

	st := manager.Status()
	log.WithFields(log.Fields{
		"total_requests":         st.TotalRequests,
		"max_concurrent_reached": st.MaxConcurrentReached,
		"utilization":            st.UtilizationPercent,
		"uptime_seconds":         st.UptimeSeconds,
	}).Info("final gate status")
	log.Info(st.Advice())
}

func runWorkers(ctx context.Context, cfg config, manager *concurrency.Manager, pace *infra.PaceStore) {
	workerDone := make(chan int)

	for w := 0; w < cfg.workers; w++ {
		go func(w int) {
			defer func() { workerDone <- w }()

			runner := application.Runner{
				Admit:    manager.Acquire,
				LocalMax: cfg.localMax,
				Model:    cfg.model,
			}
			if pace != nil {
				runner.Pace = pace
			}

			jobs := make([]application.Job, cfg.jobsPerWorker)
			for i := range jobs {
				jobs[i] = func(ctx context.Context) error {
					return fakeAPICall(ctx, cfg)
				}
			}

			failed := 0
			for _, err := range runner.Run(ctx, jobs) {
				if err != nil {
					failed++
				}
			}
			log.WithFields(log.Fields{"worker": w, "jobs": cfg.jobsPerWorker, "failed": failed}).
				Info("worker batch finished")
		}(w)
	}

	for w := 0; w < cfg.workers; w++ {
		<-workerDone
	}
}

// fakeAPICall simula a chamada à Replicate: bate no servidor fake se
// configurado, senão só dorme o tempo da "geração".
func fakeAPICall(ctx context.Context, cfg config) error {
	if cfg.fakeAPIURL == "" {
		select {
		case <-time.After(cfg.jobDuration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.fakeAPIURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fake api returned %d", resp.StatusCode)
	}
	return nil
}

type config struct {
	listenAddr    string
	instance      string
	workers       int
	jobsPerWorker int
	localMax      int
	jobDuration   time.Duration
	model         string
	fakeAPIURL    string

	paceRPS   float64
	paceBurst int

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackWorkers  bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.instance = getenvDefault("INSTANCE_LABEL", hostnameDefault())
	cfg.workers = getenvIntDefault("WORKERS", 3)
	cfg.jobsPerWorker = getenvIntDefault("JOBS_PER_WORKER", 6)
	cfg.localMax = getenvIntDefault("LOCAL_MAX_CONCURRENT", 0)
	cfg.jobDuration = getenvDurationDefault("JOB_DURATION", 1*time.Second)
	cfg.model = getenvDefault("MODEL", "black-forest-labs/flux-dev")
	cfg.fakeAPIURL = os.Getenv("FAKE_API_URL")

	cfg.paceRPS = getenvFloatDefault("PACE_RPS", 0)
	cfg.paceBurst = getenvIntDefault("PACE_BURST", 5)

	cfg.statsEnabled = getenvBoolDefault("GATE_STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("GATE_STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("GATE_STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("GATE_STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("GATE_STATS_PREFIX", "replicate:gate")
	cfg.statsTTL = getenvDurationDefault("GATE_STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("GATE_STATS_BUCKET", "minute")
	cfg.statsTrackWorkers = getenvBoolDefault("GATE_STATS_TRACK_WORKERS", false)

	if cfg.workers < 1 {
		return config{}, errors.New("WORKERS must be >= 1")
	}
	if cfg.jobsPerWorker < 1 {
		return config{}, errors.New("JOBS_PER_WORKER must be >= 1")
	}
	if cfg.paceRPS < 0 {
		return config{}, errors.New("PACE_RPS must be >= 0")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("GATE_STATS_REDIS_ADDR is required when GATE_STATS_ENABLED=true")
	}
	return cfg, nil
}

func hostnameDefault() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "gate-demo"
	}
	return h
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
