package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Command lifecycle states. A command is delivered to its device only
// while pending; storing a result flips it to completed exactly once.
const (
	CommandPending   = "pending"
	CommandCompleted = "completed"
)

// Command — operator-issued instruction for a single device. The payload
// is an opaque document; no schema is imposed.
type Command struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DeviceID primitive.ObjectID `bson:"device_id" json:"device_id"`
	Command  any                `bson:"command" json:"command"`
	Status   string             `bson:"status" json:"status"`
	IssuedAt time.Time          `bson:"issued_at" json:"issued_at"`
}

// CommandResult — append-only execution result reported by a device.
// Duplicates are accepted; each submission creates a new record.
type CommandResult struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DeviceID   primitive.ObjectID `bson:"device_id" json:"device_id"`
	Command    any                `bson:"command" json:"command"`
	Result     any                `bson:"result" json:"result"`
	ReportedAt time.Time          `bson:"reported_at" json:"reported_at"`
}
