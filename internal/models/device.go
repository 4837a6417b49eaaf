package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device — registered fleet device with its latest telemetry snapshot.
// Snapshot fields are caller-supplied and untyped; they stay unset until
// the first status report overwrites them.
type Device struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	DeviceType   string             `bson:"device_type" json:"device_type"`
	Location     string             `bson:"location" json:"location"`
	RegisteredAt time.Time          `bson:"registered_at" json:"registered_at"`
	Status       string             `bson:"status" json:"status"`
	CPUUsage     any                `bson:"cpu_usage,omitempty" json:"cpu_usage,omitempty"`
	RAMUsage     any                `bson:"ram_usage,omitempty" json:"ram_usage,omitempty"`
	MemoryUsage  any                `bson:"memory_usage,omitempty" json:"memory_usage,omitempty"`
	LastReport   *time.Time         `bson:"last_report" json:"last_report"`
}

// StatusReport — immutable history record, one per report_status call.
// Never updated or deleted.
type StatusReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DeviceID    primitive.ObjectID `bson:"device_id" json:"device_id"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	CPUUsage    any                `bson:"cpu_usage" json:"cpu_usage"`
	RAMUsage    any                `bson:"ram_usage" json:"ram_usage"`
	MemoryUsage any                `bson:"memory_usage" json:"memory_usage"`
	Status      string             `bson:"status" json:"status"`
	IPAddress   string             `bson:"ip_address" json:"ip_address"`
}

// Snapshot — the mutable subset of Device overwritten on every report.
type Snapshot struct {
	CPUUsage    any    `bson:"cpu_usage" json:"cpu_usage"`
	RAMUsage    any    `bson:"ram_usage" json:"ram_usage"`
	MemoryUsage any    `bson:"memory_usage" json:"memory_usage"`
	Status      string `bson:"status" json:"status"`
}
