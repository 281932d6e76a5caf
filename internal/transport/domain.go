// Package transport runs the cost negotiation between the Transport
// department and the customer, and keeps the vehicle fleet ledger.
package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
)

// Approval statuses.
const (
	StatusPending       lifecycle.Status = "pending"
	StatusApproved      lifecycle.Status = "approved"
	StatusRejected      lifecycle.Status = "rejected"
	StatusRenegotiating lifecycle.Status = "renegotiating"
	StatusConfirmed     lifecycle.Status = "confirmed"
	StatusCancelled     lifecycle.Status = "cancelled"
)

// Approval triggers.
const (
	TriggerApprove      lifecycle.Trigger = "approve"
	TriggerReject       lifecycle.Trigger = "reject"
	TriggerAcceptDemand lifecycle.Trigger = "accept_demand"
	TriggerRenegotiate  lifecycle.Trigger = "renegotiate"
	TriggerModifyOrder  lifecycle.Trigger = "modify_order"
	TriggerCancel       lifecycle.Trigger = "cancel"
)

// Machine declares the negotiation edge table. The reject/renegotiate loop
// has no round limit; it ends only when one side approves, the customer
// accepts the demand, or the customer backs out to modify the order.
func Machine() *lifecycle.Machine {
	return lifecycle.NewMachine(
		lifecycle.Edge{From: StatusPending, Trigger: TriggerApprove, To: StatusApproved},
		lifecycle.Edge{From: StatusPending, Trigger: TriggerReject, To: StatusRejected},
		lifecycle.Edge{From: StatusRejected, Trigger: TriggerAcceptDemand, To: StatusConfirmed},
		lifecycle.Edge{From: StatusRejected, Trigger: TriggerRenegotiate, To: StatusRenegotiating},
		lifecycle.Edge{From: StatusRejected, Trigger: TriggerModifyOrder, To: StatusCancelled},
		lifecycle.Edge{From: StatusRenegotiating, Trigger: TriggerApprove, To: StatusApproved},
		lifecycle.Edge{From: StatusRenegotiating, Trigger: TriggerReject, To: StatusRejected},
		lifecycle.Edge{From: StatusPending, Trigger: TriggerCancel, To: StatusCancelled},
		lifecycle.Edge{From: StatusRejected, Trigger: TriggerCancel, To: StatusCancelled},
		lifecycle.Edge{From: StatusRenegotiating, Trigger: TriggerCancel, To: StatusCancelled},
	)
}

// openStatuses are the statuses in which an approval still blocks its order.
var openStatuses = []lifecycle.Status{StatusPending, StatusRejected, StatusRenegotiating}

// Approval is one transport cost negotiation, keyed to a sales order by its
// order number. At most one approval per order may be open at a time.
type Approval struct {
	ID               uuid.UUID        `json:"id"`
	OrderNumber      string           `json:"orderNumber"`
	DeliveryType     string           `json:"deliveryType"`
	TransportCost    decimal.Decimal  `json:"transportCost"`
	DemandAmount     decimal.Decimal  `json:"demandAmount"`
	TransportNotes   string           `json:"transportNotes,omitempty"`
	NegotiatedAmount decimal.Decimal  `json:"negotiatedAmount"`
	CustomerNotes    string           `json:"customerNotes,omitempty"`
	Status           lifecycle.Status `json:"status"`
	DecidedBy        string           `json:"decidedBy,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Vehicle statuses.
const (
	VehicleAvailable   lifecycle.Status = "available"
	VehicleAssigned    lifecycle.Status = "assigned"
	VehicleMaintenance lifecycle.Status = "maintenance"
	VehicleReturning   lifecycle.Status = "returning"
)

// Vehicle triggers.
const (
	TriggerAssign        lifecycle.Trigger = "assign"
	TriggerStartReturn   lifecycle.Trigger = "start_return"
	TriggerMarkReturned  lifecycle.Trigger = "mark_returned"
	TriggerEnterWorkshop lifecycle.Trigger = "enter_workshop"
	TriggerLeaveWorkshop lifecycle.Trigger = "leave_workshop"
)

// VehicleMachine declares the fleet edge table.
func VehicleMachine() *lifecycle.Machine {
	return lifecycle.NewMachine(
		lifecycle.Edge{From: VehicleAvailable, Trigger: TriggerAssign, To: VehicleAssigned},
		lifecycle.Edge{From: VehicleAssigned, Trigger: TriggerStartReturn, To: VehicleReturning},
		lifecycle.Edge{From: VehicleReturning, Trigger: TriggerMarkReturned, To: VehicleAvailable},
		lifecycle.Edge{From: VehicleAvailable, Trigger: TriggerEnterWorkshop, To: VehicleMaintenance},
		lifecycle.Edge{From: VehicleMaintenance, Trigger: TriggerLeaveWorkshop, To: VehicleAvailable},
	)
}

// Vehicle is one truck in the company fleet.
type Vehicle struct {
	ID                  uuid.UUID        `json:"id"`
	RegistrationNumber  string           `json:"registrationNumber"`
	Model               string           `json:"model"`
	CapacityKg          int              `json:"capacityKg"`
	DriverName          string           `json:"driverName,omitempty"`
	Status              lifecycle.Status `json:"status"`
	AssignedOrderNumber string           `json:"assignedOrderNumber,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}
