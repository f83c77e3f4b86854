package service

import (
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
)

// LogService exposes the persisted log sink to the developer endpoint.
type LogService struct {
	logRepo *repository.LogRepository
}

// NewLogService creates a new LogService with the provided repository dependency.
func NewLogService(logRepo *repository.LogRepository) *LogService {
	return &LogService{logRepo: logRepo}
}

// GetLogs retrieves a filtered, cursor-paginated page of log entries.
func (s *LogService) GetLogs(filters model.LogFilters) (model.LogResponse, error) {
	return s.logRepo.GetLogs(filters)
}
