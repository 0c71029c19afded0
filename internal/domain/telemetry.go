package domain

import "time"

// Socket is a simulated client connection recorded by the jobs service.
// Time fields are passed through exactly as the backend reports them.
type Socket struct {
	ID               string  `json:"id"`
	JobID            string  `json:"jobId"`
	Connected        bool    `json:"connected"`
	Disconnected     bool    `json:"disconnected"`
	HasError         bool    `json:"hasError"`
	ConnectionTime   *string `json:"connectionTime,omitempty"`
	DisconnectTime   *string `json:"disconnectTime,omitempty"`
	ErrorTime        *string `json:"errorTime,omitempty"`
	TimeToConnection *int    `json:"timeToConnection,omitempty"`
}

// Usage is one Cloud Foundry resource sample for an app instance.
type Usage struct {
	ID        string  `json:"id"`
	JobID     string  `json:"jobId"`
	AppID     string  `json:"appId"`
	Name      string  `json:"name"`
	Instance  int     `json:"instance"`
	Mem       float64 `json:"mem"`
	CPU       float64 `json:"cpu"`
	Disk      float64 `json:"disk"`
	MemQuota  float64 `json:"mem_quota"`
	DiskQuota float64 `json:"disk_quota"`
	Time      string  `json:"time"`
	State     string  `json:"state"`
	Uptime    float64 `json:"uptime"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Tick is one fixed-width time bucket of a job's telemetry series. Offset is
// the number of seconds between the start of bucket zero and GT.
type Tick struct {
	JobID  string
	GT     time.Time
	LT     time.Time
	Offset int
}

// CfApp is a distinct app observed for a job inside a tick window.
type CfApp struct {
	ID    string
	JobID string
	Name  string
	GT    time.Time
	LT    time.Time
}

// Instance is a distinct instance index of an app inside a tick window.
type Instance struct {
	JobID    string
	AppID    string
	Instance int
	GT       time.Time
	LT       time.Time
}

// ConnectedSocketCount is the number of sockets open at some point in a tick.
type ConnectedSocketCount struct {
	Count int64 `json:"count"`
}

// UsageStats summarises every usage sample in a tick. Pointer fields are nil
// when the window holds no samples.
type UsageStats struct {
	Samples int64
	CPUAvg  *float64
	CPUMax  *float64
	CPUP95  *float64
	MemAvg  *float64
	MemMax  *float64
	MemP95  *float64
}
