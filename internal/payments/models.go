package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Method enumerates how a booking is paid
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCreditCard   Method = "credit_card"
	MethodEWallet      Method = "e_wallet"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCreditCard, MethodEWallet:
		return true
	}
	return false
}

// IsManual reports whether the method settles offline. A successful manual
// payment confirms the booking directly; gateway methods wait for operator
// sign-off.
func (m Method) IsManual() bool {
	return m == MethodCash || m == MethodBankTransfer
}

// Status enumerates payment states. Movement is append-only forward:
// PENDING -> SUCCESS | FAILED, SUCCESS -> REFUNDED. A FAILED payment is only
// resurrected by an explicit retry back to PENDING.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is one payment attempt/settlement for a booking. A booking can hold
// several rows; the latest by creation time is authoritative.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	Method        Method     `gorm:"type:varchar(20);not null" json:"method"`
	Status        Status     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	AmountDue     float64    `gorm:"not null" json:"amount_due"`
	AmountPaid    float64    `gorm:"not null;default:0" json:"amount_paid"`
	TransactionID string     `gorm:"uniqueIndex;not null" json:"transaction_id"`
	Note          string     `json:"note,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Payment) IsPending() bool  { return p.Status == StatusPending }
func (p *Payment) IsSuccess() bool  { return p.Status == StatusSuccess }
func (p *Payment) IsFailed() bool   { return p.Status == StatusFailed }
func (p *Payment) IsRefunded() bool { return p.Status == StatusRefunded }

// UpdateStatusRequest is the payload a gateway callback or admin action sends
type UpdateStatusRequest struct {
	Status     Status   `json:"status" binding:"required"`
	AmountPaid *float64 `json:"amount_paid,omitempty"`
	Note       string   `json:"note,omitempty"`
}
