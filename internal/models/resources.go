package models

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

type Appointment struct {
	ID         uuid.UUID         `json:"id"`
	TenantID   uuid.UUID         `json:"tenant_id"`
	ClientName string            `json:"client_name"`
	EmployeeID *uuid.UUID        `json:"employee_id,omitempty"`
	Service    string            `json:"service"`
	StartsAt   time.Time         `json:"starts_at"`
	EndsAt     time.Time         `json:"ends_at"`
	Status     AppointmentStatus `json:"status"`
	Notes      string            `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (a *Appointment) GetTenantID() uuid.UUID   { return a.TenantID }
func (a *Appointment) SetTenantID(id uuid.UUID) { a.TenantID = id }

type SaleItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Sale is a point-of-sale transaction.
type Sale struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	CashierID uuid.UUID  `json:"cashier_id"`
	Items     []SaleItem `json:"items"`
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s *Sale) GetTenantID() uuid.UUID   { return s.TenantID }
func (s *Sale) SetTenantID(id uuid.UUID) { s.TenantID = id }

// Employee is a staff member of a tenant. It is backed by a user account
// plus a staff role assignment; the record carries salon-specific fields.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Specialty string    `json:"specialty,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Employee) GetTenantID() uuid.UUID   { return e.TenantID }
func (e *Employee) SetTenantID(id uuid.UUID) { e.TenantID = id }
