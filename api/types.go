package api

import (
	"net/url"
	"strconv"
)

// Page is the backend's pagination envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// ListQuery is passed through to list endpoints untouched; zero fields are
// omitted.
type ListQuery struct {
	Page       int
	Size       int
	Keyword    string
	Status     string
	BuildingID int64
	RoomID     int64
	Sort       string
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	size := q.Size
	if size <= 0 {
		size = 10
	}
	v.Set("size", strconv.Itoa(size))
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.BuildingID > 0 {
		v.Set("buildingId", strconv.FormatInt(q.BuildingID, 10))
	}
	if q.RoomID > 0 {
		v.Set("roomId", strconv.FormatInt(q.RoomID, 10))
	}
	return v
}

// Key identifies the query for snapshot caching.
func (q ListQuery) Key() string {
	return q.Values().Encode()
}

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type UserProfile struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

type Building struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type BuildingInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomRented      RoomStatus = "RENTED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)

type Room struct {
	ID         int64      `json:"id"`
	RoomNumber string     `json:"roomNumber"`
	Price      float64    `json:"price"`
	Area       float64    `json:"area"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	Status     RoomStatus `json:"status"`
	BuildingID int64      `json:"buildingId"`
}

type RoomInput struct {
	RoomNumber string     `json:"roomNumber"`
	BuildingID int64      `json:"buildingId"`
	Price      float64    `json:"price"`
	Area       float64    `json:"area"`
	Status     RoomStatus `json:"status,omitempty"`
}

type Tenant struct {
	ID                int64  `json:"id"`
	FullName          string `json:"fullName"`
	DateOfBirth       string `json:"dateOfBirth,omitempty"`
	PhoneNumber       string `json:"phoneNumber"`
	Email             string `json:"email,omitempty"`
	CitizenID         string `json:"citizenId"`
	CitizenIDImageURL string `json:"citizenIdImageUrl,omitempty"`
	PermanentAddress  string `json:"permanentAddress,omitempty"`
}

type TenantInput struct {
	FullName         string `json:"fullName"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
	PhoneNumber      string `json:"phoneNumber"`
	Email            string `json:"email,omitempty"`
	CitizenID        string `json:"citizenId"`
	PermanentAddress string `json:"permanentAddress,omitempty"`
	Password         string `json:"password,omitempty"`
}

type ContractStatus string

const (
	ContractDraft              ContractStatus = "DRAFT"
	ContractWaitingSignatures  ContractStatus = "WAITING_SIGNATURES"
	ContractActive             ContractStatus = "ACTIVE"
	ContractPendingTermination ContractStatus = "PENDING_TERMINATION"
	ContractTerminated         ContractStatus = "TERMINATED"
	ContractExpired            ContractStatus = "EXPIRED"
)

type Contract struct {
	ID                 int64          `json:"id"`
	RoomID             int64          `json:"roomId"`
	RoomNumber         string         `json:"roomNumber"`
	TenantID           int64          `json:"tenantId"`
	TenantName         string         `json:"tenantName"`
	StartDate          string         `json:"startDate"`
	EndDate            string         `json:"endDate"`
	RentAmount         float64        `json:"rentAmount"`
	DepositAmount      float64        `json:"depositAmount"`
	PaymentCycle       int            `json:"paymentCycle"`
	Status             ContractStatus `json:"status"`
	ContractFileURL    string         `json:"contractFileUrl,omitempty"`
	TenantSignatureURL string         `json:"tenantSignatureUrl,omitempty"`
	OwnerSignatureURL  string         `json:"ownerSignatureUrl,omitempty"`
}

type ContractInput struct {
	RoomID        int64   `json:"roomId"`
	TenantID      int64   `json:"tenantId"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	RentAmount    float64 `json:"rentAmount"`
	DepositAmount float64 `json:"depositAmount"`
	PaymentCycle  int     `json:"paymentCycle"`
}

type MeterReading struct {
	ID                  int64   `json:"id"`
	RoomID              int64   `json:"roomId"`
	ReadingMonth        int     `json:"readingMonth"`
	ReadingYear         int     `json:"readingYear"`
	OldElectricNumber   float64 `json:"oldElectricNumber"`
	NewElectricNumber   float64 `json:"newElectricNumber"`
	ElectricConsumption float64 `json:"electricConsumption"`
	OldWaterNumber      float64 `json:"oldWaterNumber"`
	NewWaterNumber      float64 `json:"newWaterNumber"`
	WaterConsumption    float64 `json:"waterConsumption"`
	ReadingDate         string  `json:"readingDate"`
	ElectricImageURL    string  `json:"electricImageUrl,omitempty"`
	WaterImageURL       string  `json:"waterImageUrl,omitempty"`
	InvoiceGenerated    bool    `json:"invoiceGenerated"`
}

type MeterReadingInput struct {
	ReadingMonth      int     `json:"readingMonth"`
	ReadingYear       int     `json:"readingYear"`
	NewElectricNumber float64 `json:"newElectricNumber"`
	NewWaterNumber    float64 `json:"newWaterNumber"`
}

type InvoiceStatus string

const (
	InvoicePending             InvoiceStatus = "PENDING"
	InvoiceWaitingConfirmation InvoiceStatus = "WAITING_CONFIRMATION"
	InvoicePaid                InvoiceStatus = "PAID"
	InvoiceOverdue             InvoiceStatus = "OVERDUE"
)

type InvoiceDetail struct {
	ID          int64   `json:"id"`
	ServiceType string  `json:"serviceType"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type Invoice struct {
	ID                int64           `json:"id"`
	ContractID        int64           `json:"contractId"`
	RoomID            int64           `json:"roomId"`
	RoomNumber        string          `json:"roomNumber"`
	TenantID          int64           `json:"tenantId"`
	TenantName        string          `json:"tenantName"`
	IssueDate         string          `json:"issueDate"`
	DueDate           string          `json:"dueDate"`
	PeriodMonth       int             `json:"periodMonth"`
	PeriodYear        int             `json:"periodYear"`
	TotalAmount       float64         `json:"totalAmount"`
	Status            InvoiceStatus   `json:"status"`
	PaymentReceiptURL string          `json:"paymentReceiptUrl,omitempty"`
	PaymentDate       string          `json:"paymentDate,omitempty"`
	Details           []InvoiceDetail `json:"details"`
}

type GenerateInvoiceRequest struct {
	ContractID       int64   `json:"contractId"`
	PeriodMonth      int     `json:"periodMonth"`
	PeriodYear       int     `json:"periodYear"`
	ElectricityPrice float64 `json:"electricityPrice"`
	WaterPrice       float64 `json:"waterPrice"`
}

type IncidentStatus string

const (
	IncidentReported   IncidentStatus = "REPORTED"
	IncidentInProgress IncidentStatus = "IN_PROGRESS"
	IncidentResolved   IncidentStatus = "RESOLVED"
	IncidentClosed     IncidentStatus = "CLOSED"
)

type IncidentPriority string

const (
	PriorityLow      IncidentPriority = "LOW"
	PriorityMedium   IncidentPriority = "MEDIUM"
	PriorityHigh     IncidentPriority = "HIGH"
	PriorityCritical IncidentPriority = "CRITICAL"
)

type Incident struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	RoomID         int64            `json:"roomId"`
	RoomNumber     string           `json:"roomNumber"`
	ReportedByID   int64            `json:"reportedById"`
	ReportedByName string           `json:"reportedByName"`
	ReportedAt     string           `json:"reportedAt"`
	Status         IncidentStatus   `json:"status"`
	Priority       IncidentPriority `json:"priority"`
	ImageURL       string           `json:"imageUrl,omitempty"`
	ResolvedAt     string           `json:"resolvedAt,omitempty"`
}

type IncidentStatusUpdate struct {
	Status   IncidentStatus   `json:"status"`
	Priority IncidentPriority `json:"priority,omitempty"`
}

type SystemSetting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type Notification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

type RequestType string

const (
	RequestContractRenewal     RequestType = "CONTRACT_RENEWAL"
	RequestContractTermination RequestType = "CONTRACT_TERMINATION"
	RequestChangePaymentCycle  RequestType = "CHANGE_PAYMENT_CYCLE"
)

type UserRequest struct {
	ID             int64       `json:"id"`
	UserName       string      `json:"userName"`
	RoomNumber     string      `json:"roomNumber"`
	Type           RequestType `json:"type"`
	Message        string      `json:"message"`
	RequestedValue string      `json:"requestedValue"`
	CreatedAt      string      `json:"createdAt"`
	IsResolved     bool        `json:"isResolved"`
}

type DashboardStats struct {
	TotalBuildings    int `json:"totalBuildings"`
	TotalRooms        int `json:"totalRooms"`
	RentedRooms       int `json:"rentedRooms"`
	AvailableRooms    int `json:"availableRooms"`
	TotalTenants      int `json:"totalTenants"`
	ExpiringContracts int `json:"expiringContracts"`
}

type RevenueByMonth struct {
	Month        string  `json:"month"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type QuickListItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
}

type Dashboard struct {
	Stats             DashboardStats   `json:"stats"`
	RevenueByMonth    []RevenueByMonth `json:"revenueByMonth"`
	ExpiringContracts []QuickListItem  `json:"expiringContracts"`
	PendingIncidents  []QuickListItem  `json:"pendingIncidents"`
}
