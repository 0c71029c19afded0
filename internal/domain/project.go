package domain

import "encoding/json"

// Project groups load-test tasks for a user.
type Project struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Task describes a load test against a websocket target, optionally paired
// with the Cloud Foundry space that hosts the apps under test.
type Task struct {
	ID                  string `json:"id"`
	UserID              string `json:"userId"`
	ProjectID           string `json:"projectId"`
	Name                string `json:"name"`
	URI                 string `json:"uri,omitempty"`
	TotalSimulatedUsers *int   `json:"totalSimulatedUsers,omitempty"`
	RunTime             *int   `json:"runTime,omitempty"`
	// Scripts is stored by the projects service as an encoded JSON array.
	Scripts          string `json:"scripts,omitempty"`
	SuccessThreshold *int   `json:"successThreshold,omitempty"`
	CfAPI            string `json:"cfApi,omitempty"`
	CfUser           string `json:"cfUser,omitempty"`
	CfPass           string `json:"cfPass,omitempty"`
	CfOrg            string `json:"cfOrg,omitempty"`
	CfSpace          string `json:"cfSpace,omitempty"`
	CfApps           string `json:"cfApps,omitempty"`
}

// Script is one phase of simulated socket traffic. Durations are seconds.
type Script struct {
	Start           int             `json:"start"`
	Timeout         int             `json:"timeout,omitempty"`
	TotalSimulators int             `json:"totalSimulators,omitempty"`
	Target          string          `json:"target,omitempty"`
	RetryLimit      int             `json:"retryLimit,omitempty"`
	Payloads        []SocketPayload `json:"payloads,omitempty"`
}

// SocketPayload is sent on an open socket Start seconds into the script.
type SocketPayload struct {
	Start   int             `json:"start"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
