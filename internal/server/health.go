package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const pingTimeout = 2 * time.Second

const gib = 1024 * 1024 * 1024

// healthHandler reports backend reachability plus host metrics. It answers
// 503 while the backend is down.
func (s *Server) healthHandler(c echo.Context) error {
	ctx := c.Request().Context()

	// 1. Backend
	backend := map[string]any{"status": "up"}
	status := http.StatusOK
	if s.backend != nil {
		backend["model"] = s.backend.Model()
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.backend.Ping(pingCtx)
		cancel()
		if err != nil {
			backend["status"] = "down"
			backend["error"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	stats := map[string]any{
		"status":  "online",
		"backend": backend,
		"runtime": map[string]any{
			"uptime":     time.Since(s.startTime).Round(time.Second).String(),
			"start_time": s.startTime.Format(time.RFC3339),
		},
	}
	if status != http.StatusOK {
		stats["status"] = "degraded"
	}

	// 2. Host info
	if hInfo, err := host.InfoWithContext(ctx); err == nil {
		runtime := stats["runtime"].(map[string]any)
		runtime["os"] = hInfo.OS
		runtime["platform"] = hInfo.Platform
		runtime["hostname"] = hInfo.Hostname
	}

	// 3. CPU usage since the previous call
	if cpuPercent, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(cpuPercent) > 0 {
		stats["cpu"] = map[string]any{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
		}
	}

	// 4. Memory
	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats["memory"] = map[string]any{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/gib),
			"used_gb":      fmt.Sprintf("%.2f GB", float64(v.Used)/gib),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
		}
	}

	// 5. Disk holding the plans
	if d, err := disk.UsageWithContext(ctx, existingDir(s.outputDir)); err == nil {
		stats["disk"] = map[string]any{
			"path":         d.Path,
			"total_gb":     fmt.Sprintf("%.2f GB", float64(d.Total)/gib),
			"free_gb":      fmt.Sprintf("%.2f GB", float64(d.Free)/gib),
			"used_percent": fmt.Sprintf("%.2f%%", d.UsedPercent),
		}
	}

	return c.JSON(status, stats)
}

// existingDir walks up from dir to the first directory that exists, since the
// output directory is only created on the first save.
func existingDir(dir string) string {
	if dir == "" {
		return "."
	}
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
