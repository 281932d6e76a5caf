package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

// AddVehicleInput registers a fleet vehicle.
type AddVehicleInput struct {
	RegistrationNumber string
	Model              string
	CapacityKg         int
	DriverName         string
}

// EditVehicleInput rewrites the editable details of a vehicle. The
// registration number is the vehicle's identity and never changes.
type EditVehicleInput struct {
	Model      string
	CapacityKg int
	DriverName string
}

// AddVehicle registers a vehicle, available for assignment.
func (s *Service) AddVehicle(ctx context.Context, input AddVehicleInput, actor string) (Vehicle, error) {
	if strings.TrimSpace(input.RegistrationNumber) == "" {
		return Vehicle{}, fmt.Errorf("transport: registration number required: %w", shared.ErrValidation)
	}
	if input.CapacityKg <= 0 {
		return Vehicle{}, fmt.Errorf("transport: capacity must be positive: %w", shared.ErrValidation)
	}
	now := time.Now()
	v := Vehicle{
		ID:                 uuid.New(),
		RegistrationNumber: input.RegistrationNumber,
		Model:              input.Model,
		CapacityKg:         input.CapacityKg,
		DriverName:         input.DriverName,
		Status:             VehicleAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return Vehicle{}, err
	}
	s.recordAudit(ctx, actor, "FLEET_ADD", v.ID, map[string]any{"registration": v.RegistrationNumber})
	return v, nil
}

// EditVehicle updates a vehicle's model, capacity and driver.
func (s *Service) EditVehicle(ctx context.Context, id uuid.UUID, input EditVehicleInput, actor string) (Vehicle, error) {
	if input.CapacityKg <= 0 {
		return Vehicle{}, fmt.Errorf("transport: capacity must be positive: %w", shared.ErrValidation)
	}
	if _, err := s.repo.GetVehicle(ctx, id); err != nil {
		return Vehicle{}, err
	}
	if err := s.repo.UpdateVehicle(ctx, id, input.Model, input.CapacityKg, input.DriverName); err != nil {
		return Vehicle{}, err
	}
	s.recordAudit(ctx, actor, "FLEET_EDIT", id, map[string]any{"capacity_kg": input.CapacityKg})
	return s.repo.GetVehicle(ctx, id)
}

// DeleteVehicle removes a vehicle from the fleet. A vehicle out on a
// delivery run cannot be removed.
func (s *Service) DeleteVehicle(ctx context.Context, id uuid.UUID, actor string) error {
	v, err := s.repo.GetVehicle(ctx, id)
	if err != nil {
		return err
	}
	if v.Status == VehicleAssigned {
		return fmt.Errorf("transport: vehicle %s is on a delivery run: %w", v.RegistrationNumber, shared.ErrConflict)
	}
	if err := s.repo.DeleteVehicle(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "FLEET_DELETE", id, map[string]any{"registration": v.RegistrationNumber})
	return nil
}

// ListVehicles returns the fleet.
func (s *Service) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

// AssignVehicle puts an available vehicle on a delivery run.
func (s *Service) AssignVehicle(ctx context.Context, id uuid.UUID, orderNumber, actor string) (Vehicle, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return Vehicle{}, fmt.Errorf("transport: order number required: %w", shared.ErrValidation)
	}
	return s.vehicleTransition(ctx, id, TriggerAssign, orderNumber, actor, "FLEET_ASSIGN")
}

// StartReturn marks an assigned vehicle heading back after delivery.
func (s *Service) StartReturn(ctx context.Context, id uuid.UUID, actor string) (Vehicle, error) {
	return s.vehicleTransition(ctx, id, TriggerStartReturn, "", actor, "FLEET_START_RETURN")
}

// MarkReturned puts a returning vehicle back in the available pool.
func (s *Service) MarkReturned(ctx context.Context, id uuid.UUID, actor string) (Vehicle, error) {
	return s.vehicleTransition(ctx, id, TriggerMarkReturned, "", actor, "FLEET_RETURNED")
}

// EnterWorkshop takes an available vehicle out for maintenance.
func (s *Service) EnterWorkshop(ctx context.Context, id uuid.UUID, actor string) (Vehicle, error) {
	return s.vehicleTransition(ctx, id, TriggerEnterWorkshop, "", actor, "FLEET_MAINTENANCE")
}

// LeaveWorkshop returns a maintained vehicle to the available pool.
func (s *Service) LeaveWorkshop(ctx context.Context, id uuid.UUID, actor string) (Vehicle, error) {
	return s.vehicleTransition(ctx, id, TriggerLeaveWorkshop, "", actor, "FLEET_AVAILABLE")
}

func (s *Service) vehicleTransition(ctx context.Context, id uuid.UUID, trigger lifecycle.Trigger, orderNumber, actor, action string) (Vehicle, error) {
	v, err := s.repo.GetVehicle(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	next, err := s.vehicles.Next(v.Status, trigger)
	if err != nil {
		return Vehicle{}, err
	}
	if err := s.repo.CASVehicle(ctx, id, v.Status, next, orderNumber); err != nil {
		return Vehicle{}, err
	}
	s.recordAudit(ctx, actor, action, id, map[string]any{"status": string(next)})
	return s.repo.GetVehicle(ctx, id)
}
