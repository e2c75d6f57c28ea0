package system

import "time"

// StatusView is the /system/status response. Optional blocks are omitted
// when their probe fails so one bad source never breaks the endpoint.
type StatusView struct {
	Server   ServerStatus     `json:"server"`
	Runtime  RuntimeStatus    `json:"runtime"`
	Host     *HostStatus      `json:"host,omitempty"`
	Catalog  *CatalogStatus   `json:"catalog,omitempty"`
	Sessions map[string]any   `json:"sessions,omitempty"`
	Events   map[string]int64 `json:"events,omitempty"`
}

type ServerStatus struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`
}

type RuntimeStatus struct {
	GoVersion  string `json:"goVersion"`
	Goroutines int    `json:"goroutines"`
	NumCPU     int    `json:"numCpu"`
	HeapAlloc  uint64 `json:"heapAllocBytes"`
}

// HostStatus carries machine-level gauges from gopsutil.
type HostStatus struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsed    uint64  `json:"memoryUsedBytes"`
	MemoryTotal   uint64  `json:"memoryTotalBytes"`
}

type CatalogStatus struct {
	Items    int64 `json:"items"`
	Accounts int64 `json:"accounts"`
}
