// Package common provides file helpers and the server information snapshot.
package common

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Version is reported by the status endpoint.
const Version = "1.0.0"

// Info holds system and server information
type Info struct {
	Hostname    string
	OS          string
	Version     string
	GoVersion   string
	NumCPU      int
	GoMaxProcs  int
	StartTime   time.Time
	Connections uint64
	Requests    uint64
}

// GetInfo returns system information for a server started at start.
func GetInfo(start time.Time) *Info {
	hostname, _ := os.Hostname()

	return &Info{
		Hostname:   hostname,
		OS:         runtime.GOOS,
		Version:    Version,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		GoMaxProcs: runtime.GOMAXPROCS(0),
		StartTime:  start,
	}
}

// String returns a string representation of the Info struct
func (i *Info) String() string {
	uptime := time.Since(i.StartTime).Round(time.Second)

	return fmt.Sprintf(
		"Server Information:\n"+
			"Hostname: %s\n"+
			"OS: %s\n"+
			"Version: %s\n"+
			"Go Version: %s\n"+
			"NumCPU: %d\n"+
			"Threads: %d\n"+
			"Uptime: %s\n"+
			"Connections: %d\n"+
			"Requests: %d\n",
		i.Hostname,
		i.OS,
		i.Version,
		i.GoVersion,
		i.NumCPU,
		i.GoMaxProcs,
		uptime,
		i.Connections,
		i.Requests,
	)
}
