package domain

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/entity"
)

// Status is the invoice lifecycle state. Transitions are restricted to
// the table in Transitions; terminal states allow none.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusWaiting   Status = "WAITING"
	StatusPaid      Status = "PAID"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// Transitions is the closed set of legal status moves.
var Transitions = map[Status][]Status{
	StatusDraft:   {StatusPending, StatusCancelled},
	StatusPending: {StatusWaiting, StatusPaid, StatusExpired, StatusCancelled},
	StatusWaiting: {StatusPaid, StatusExpired, StatusCancelled},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Invoice is a payment request issued by a creator. Monetary amounts are
// decimal strings; currencyDecimals carries the scale. Lowercased and
// epoch fields are derived mirrors recomputed on every write.
type Invoice struct {
	entity.Meta

	UserID              string `json:"userId"`
	OrgID               string `json:"orgId,omitempty"`
	Number              string `json:"number"`
	Amount              string `json:"amount"`
	PaidAmount          string `json:"paidAmount,omitempty"`
	Currency            string `json:"currency"`
	CurrencySymbol      string `json:"currencySymbol"`
	CurrencyDecimals    int64  `json:"currencyDecimals"`
	Network             string `json:"network"`
	PreferredCurrency   string `json:"preferredCurrency"`
	PreferredNetwork    string `json:"preferredNetwork"`
	Status              Status `json:"status"`
	PaymentID           string `json:"paymentId,omitempty"`
	RequestID           string `json:"requestId"`
	RequestStatus       string `json:"requestStatus"`
	PaymentAddress      string `json:"paymentAddress"`
	PaymentAddressLc    string `json:"paymentAddressLc"`
	ClientEmail         string `json:"clientEmail,omitempty"`
	ClientEmailLc       string `json:"clientEmailLc,omitempty"`
	Description         string `json:"description,omitempty"`
	ServiceType         string `json:"serviceType,omitempty"`
	ServiceTypeLc       string `json:"serviceTypeLc,omitempty"`
	PaymentReference    string `json:"paymentReference,omitempty"`
	NetworkLc           string `json:"networkLc"`
	PreferredCurrencyLc string `json:"preferredCurrencyLc"`
	PreferredNetworkLc  string `json:"preferredNetworkLc"`

	DueDate      *time.Time `json:"dueDate,omitempty"`
	DueDateEpoch int64      `json:"dueDateEpoch,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
	PaidAtEpoch  int64      `json:"paidAtEpoch,omitempty"`
}

// Filter selects invoices by indexed fields. Zero values constrain
// nothing.
type Filter struct {
	UserID            string
	ClientEmail       string
	Status            Status
	PaymentAddress    string
	ServiceType       string
	Network           string
	PreferredCurrency string
	PreferredNetwork  string
	DueDateGte        *int64
	DueDateLte        *int64
	PaidAtGte         *int64
	PaidAtLte         *int64
}
