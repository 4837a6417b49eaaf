package commands

import (
	"context"
	"time"

	"fleetd/internal/logs"
	"fleetd/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store — command ledger persistence contract.
type Store interface {
	InsertCommand(ctx context.Context, c *models.Command) error
	// PendingCommands returns raw pending command documents for a device
	// in insertion order; empty slice when none.
	PendingCommands(ctx context.Context, deviceID primitive.ObjectID) ([]bson.M, error)
	InsertResult(ctx context.Context, res *models.CommandResult) error
	// CompleteCommand marks the (device, command) pair completed.
	// Matching nothing is not an error.
	CompleteCommand(ctx context.Context, deviceID, commandID primitive.ObjectID) error
	DeviceIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type Service struct{ store Store }

func NewService(store Store) *Service { return &Service{store: store} }

// Issue enqueues one pending command. The target is not checked for
// existence; dangling references are permitted.
func (s *Service) Issue(ctx context.Context, deviceID string, payload any) error {
	oid, err := primitive.ObjectIDFromHex(deviceID)
	if err != nil {
		return models.NotFound("invalid device id")
	}
	return s.issue(ctx, oid, payload)
}

func (s *Service) issue(ctx context.Context, deviceID primitive.ObjectID, payload any) error {
	c := &models.Command{
		DeviceID: deviceID,
		Command:  payload,
		Status:   models.CommandPending,
		IssuedAt: time.Now().UTC(),
	}
	if err := s.store.InsertCommand(ctx, c); err != nil {
		return models.Internal("insert command", err)
	}
	return nil
}

// IssueGlobal fans one command out to every registered device. The
// fan-out is not transactional; a failure partway leaves the commands
// already inserted in place.
func (s *Service) IssueGlobal(ctx context.Context, payload any) (int, error) {
	ids, err := s.store.DeviceIDs(ctx)
	if err != nil {
		return 0, models.Internal("list devices", err)
	}
	for i, id := range ids {
		if err := s.issue(ctx, id, payload); err != nil {
			logs.Logger.Warnf("global command: issued to %d of %d devices: %v", i, len(ids), err)
			return i, err
		}
	}
	return len(ids), nil
}

func (s *Service) PendingByID(ctx context.Context, deviceID primitive.ObjectID) ([]bson.M, error) {
	cmds, err := s.store.PendingCommands(ctx, deviceID)
	if err != nil {
		return nil, models.Internal("pending commands", err)
	}
	return cmds, nil
}

// StoreResult records a command execution result and marks the matching
// command completed. The result is stored even when no command matches
// (orphan results are accepted); duplicate submissions each create a new
// result record and re-apply the completed status.
func (s *Service) StoreResult(ctx context.Context, deviceID string, command map[string]any, result any) error {
	oid, err := primitive.ObjectIDFromHex(deviceID)
	if err != nil {
		return models.NotFound("invalid device id")
	}
	raw, ok := command["_id"]
	if !ok {
		return models.Validation("command must include _id")
	}
	idStr, ok := raw.(string)
	if !ok {
		return models.Validation("command _id must be a string")
	}
	cid, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return models.NotFound("invalid command id")
	}

	res := &models.CommandResult{
		DeviceID:   oid,
		Command:    command,
		Result:     result,
		ReportedAt: time.Now().UTC(),
	}
	if err := s.store.InsertResult(ctx, res); err != nil {
		return models.Internal("insert command result", err)
	}
	if err := s.store.CompleteCommand(ctx, oid, cid); err != nil {
		return models.Internal("complete command", err)
	}
	return nil
}

// DisableLogging enqueues the built-in disable_logging command.
func (s *Service) DisableLogging(ctx context.Context, deviceID string) error {
	return s.Issue(ctx, deviceID, map[string]any{"action": "disable_logging"})
}
