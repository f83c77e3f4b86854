package service

import (
	"database/sql"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/caffeinepub/trade-setup-analyzer/internal/database"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/version"
)

// SystemService handles health, version, and host statistics for the
// developer panel.
type SystemService struct {
	db    *sql.DB
	start time.Time
	log   zerolog.Logger
}

// NewSystemService creates a new SystemService.
func NewSystemService(db *sql.DB, log zerolog.Logger) *SystemService {
	return &SystemService{
		db:    db,
		start: time.Now(),
		log:   log,
	}
}

// CheckHealth checks the health of the database connection.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the running application version.
func (s *SystemService) CheckVersion() string {
	return version.Version
}

// Info collects process and host statistics. Metric read failures are
// logged and leave the corresponding fields zero rather than failing the
// whole snapshot.
func (s *SystemService) Info() model.SystemInfo {
	info := model.SystemInfo{
		AppVersion:    version.Version,
		GoVersion:     runtime.Version(),
		UptimeSeconds: uint64(time.Since(s.start).Seconds()),
		NumGoroutine:  runtime.NumGoroutine(),
	}

	// A 100ms sample keeps the endpoint responsive under frequent polling.
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("reading cpu percent failed")
	} else if len(cpuPercent) > 0 {
		info.CPUPercent = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("reading memory stats failed")
	} else {
		info.MemUsedPercent = memStat.UsedPercent
		info.MemTotalMB = memStat.Total / 1024 / 1024
	}

	return info
}
