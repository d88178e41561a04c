package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"swachhsetu/internal/config"
	"swachhsetu/internal/db"
	"swachhsetu/internal/logger"
	"swachhsetu/internal/model"
	"swachhsetu/internal/repository"
	"swachhsetu/internal/service"
)

const fetchTimeout = 30 * time.Second

// SeedSchedule is one entry of the schedules JSON document.
type SeedSchedule struct {
	Area     string            `json:"area"`
	Ward     string            `json:"ward"`
	Zone     string            `json:"zone"`
	Route    string            `json:"route"`
	Schedule model.WeeklySlots `json:"schedule"`
	Vehicles []model.Vehicle   `json:"vehicles"`
}

// Usage: seed [path-or-url]. Without an argument SEED_SCHEDULES_SOURCE is used.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("")
		bootLog.Fatal().Err(err).Msg("config load")
	}
	log := logger.New(cfg.Environment)

	source := cfg.SeedSource
	if len(os.Args) > 1 {
		source = os.Args[1]
	}
	if source == "" {
		log.Fatal().Msg("no schedule source: pass a path or URL, or set SEED_SCHEDULES_SOURCE")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, false)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*fetchTimeout)
	defer cancel()

	log.Info().Str("source", source).Msg("loading schedules")
	raw, err := readSource(ctx, source)
	if err != nil {
		log.Fatal().Err(err).Msg("read schedules")
	}

	var entries []SeedSchedule
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatal().Err(err).Msg("parse schedules")
	}

	inputs := make([]service.ScheduleInput, 0, len(entries))
	for _, e := range entries {
		inputs = append(inputs, service.ScheduleInput{
			Area:     e.Area,
			Ward:     e.Ward,
			Zone:     e.Zone,
			Route:    e.Route,
			Slots:    e.Schedule,
			Vehicles: e.Vehicles,
		})
	}

	schedules := service.NewScheduleService(repository.NewScheduleRepository(gormDB), nil, cfg.Location())
	imported, err := schedules.Import(ctx, inputs)
	if err != nil {
		log.Fatal().Err(err).Int("imported", imported).Msg("seed schedules")
	}
	log.Info().Int("imported", imported).Int("total", len(entries)).Msg("seed completed")
}

// readSource loads the document from an http(s) URL or a local file.
func readSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedules: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
