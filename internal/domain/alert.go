package domain

import "time"

// AlertNotice is constructed when a device crosses its denied-attempts
// threshold. It is published, never stored.
type AlertNotice struct {
	AlertType      string    `json:"alert_type"`
	DeviceLocation string    `json:"device_name"`
	DeniedCount    int       `json:"denied_count"`
	Threshold      int       `json:"threshold"`
	WindowSeconds  int       `json:"window_seconds"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	RaisedAt       time.Time `json:"timestamp"`
}

// AlertTypeDeniedThreshold tags notices raised by the denied-attempts engine.
const AlertTypeDeniedThreshold = "ACCESS_DENIED_THRESHOLD_EXCEEDED"
