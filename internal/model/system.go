package model

// SystemInfo reports host and process statistics for the developer panel.
type SystemInfo struct {
	AppVersion     string  `json:"app_version"`
	GoVersion      string  `json:"go_version"`
	UptimeSeconds  uint64  `json:"uptime_seconds"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemUsedPercent float64 `json:"mem_used_percent"`
	MemTotalMB     uint64  `json:"mem_total_mb"`
	NumGoroutine   int     `json:"num_goroutine"`
}
