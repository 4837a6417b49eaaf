package registry

import (
	"context"
	"fmt"
	"time"

	"fleetd/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store — device persistence contract.
type Store interface {
	CountDevicesAt(ctx context.Context, location string) (int64, error)
	InsertDevice(ctx context.Context, d *models.Device) (primitive.ObjectID, error)
	// UpdateSnapshot overwrites the snapshot fields and last_report.
	// Matching zero documents is not an error.
	UpdateSnapshot(ctx context.Context, id primitive.ObjectID, snap models.Snapshot, at time.Time) error
	InsertReport(ctx context.Context, rep *models.StatusReport) error
	FindDevice(ctx context.Context, id primitive.ObjectID) (*models.Device, bool, error)
	ListDevices(ctx context.Context) ([]bson.M, error)
}

// CommandProvider — the slice of the command ledger the registry needs:
// pending commands are handed back to a device on every status report.
type CommandProvider interface {
	PendingByID(ctx context.Context, deviceID primitive.ObjectID) ([]bson.M, error)
}

type Service struct {
	store    Store
	commands CommandProvider
}

func NewService(store Store, commands CommandProvider) *Service {
	return &Service{store: store, commands: commands}
}

// Register creates a device named "{location}-{n}", n = devices already
// at that location + 1. Count-then-insert: two concurrent registrations
// for one location can collide on a name (reference-compatible).
func (s *Service) Register(ctx context.Context, location, deviceType string) (id, name string, err error) {
	if location == "" || deviceType == "" {
		return "", "", models.Validation("location and device_type are required")
	}

	n, err := s.store.CountDevicesAt(ctx, location)
	if err != nil {
		return "", "", models.Internal("count devices", err)
	}
	name = fmt.Sprintf("%s-%d", location, n+1)

	d := &models.Device{
		Name:         name,
		DeviceType:   deviceType,
		Location:     location,
		RegisteredAt: time.Now().UTC(),
		Status:       "active",
	}
	oid, err := s.store.InsertDevice(ctx, d)
	if err != nil {
		return "", "", models.Internal("insert device", err)
	}
	return oid.Hex(), name, nil
}

// ReportInput — one periodic telemetry report. The usage metrics are
// caller-supplied and untyped.
type ReportInput struct {
	DeviceID    string
	CPUUsage    any
	RAMUsage    any
	MemoryUsage any
	Status      string
	SourceIP    string
}

// ReportStatus overwrites the device snapshot, appends a history record
// and returns the device's pending commands. The snapshot update on a
// well-formed but unknown id is a silent no-op; the history record is
// appended regardless.
func (s *Service) ReportStatus(ctx context.Context, in ReportInput) ([]bson.M, error) {
	if in.DeviceID == "" || in.Status == "" {
		return nil, models.Validation("device_id and status are required")
	}
	oid, err := primitive.ObjectIDFromHex(in.DeviceID)
	if err != nil {
		return nil, models.NotFound("invalid device id")
	}

	now := time.Now().UTC()
	snap := models.Snapshot{
		CPUUsage:    in.CPUUsage,
		RAMUsage:    in.RAMUsage,
		MemoryUsage: in.MemoryUsage,
		Status:      in.Status,
	}
	if err := s.store.UpdateSnapshot(ctx, oid, snap, now); err != nil {
		return nil, models.Internal("update snapshot", err)
	}
	rep := &models.StatusReport{
		DeviceID:    oid,
		Timestamp:   now,
		CPUUsage:    in.CPUUsage,
		RAMUsage:    in.RAMUsage,
		MemoryUsage: in.MemoryUsage,
		Status:      in.Status,
		IPAddress:   in.SourceIP,
	}
	if err := s.store.InsertReport(ctx, rep); err != nil {
		return nil, models.Internal("insert status report", err)
	}

	cmds, err := s.commands.PendingByID(ctx, oid)
	if err != nil {
		return nil, models.Internal("pending commands", err)
	}
	return cmds, nil
}

// DeviceView — current snapshot plus pending commands.
type DeviceView struct {
	Status   map[string]any
	Commands []bson.M
}

func (s *Service) QueryDevice(ctx context.Context, id string) (*DeviceView, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NotFound("invalid device id")
	}
	d, ok, err := s.store.FindDevice(ctx, oid)
	if err != nil {
		return nil, models.Internal("find device", err)
	}
	if !ok {
		return nil, models.NotFound("Device not found")
	}
	cmds, err := s.commands.PendingByID(ctx, oid)
	if err != nil {
		return nil, models.Internal("pending commands", err)
	}
	return &DeviceView{
		Status: map[string]any{
			"cpu_usage":    d.CPUUsage,
			"ram_usage":    d.RAMUsage,
			"memory_usage": d.MemoryUsage,
			"status":       d.Status,
		},
		Commands: cmds,
	}, nil
}

func (s *Service) ListDevices(ctx context.Context) ([]bson.M, error) {
	devs, err := s.store.ListDevices(ctx)
	if err != nil {
		return nil, models.Internal("list devices", err)
	}
	return devs, nil
}
