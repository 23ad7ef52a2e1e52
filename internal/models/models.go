package models

import (
	"time"
)

type Product struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name                string    `gorm:"not null"                  json:"name"`
	Slug                string    `gorm:"uniqueIndex;not null"      json:"slug"`
	Image               string    `json:"image"`
	Brand               string    `json:"brand"`
	Category            string    `gorm:"index"                     json:"category"`
	Description         string    `json:"description"`
	Price               float64   `gorm:"not null"                  json:"price"`
	Rent                float64   `json:"rent"`
	Penalty             float64   `json:"penalty"`
	CountInStock        int       `json:"countInStock"`
	CountInStockForRent int       `json:"countInStockForRent"`
	Rating              float64   `json:"rating"`
	NumReviews          int       `json:"numReviews"`
	Reviews             []Review  `gorm:"foreignKey:ProductID"      json:"reviews"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"index;not null"           json:"-"`
	Name      string    `gorm:"not null"                 json:"name"`
	Rating    float64   `gorm:"not null"                 json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"uniqueIndex;not null"     json:"email"`
	Password  string    `gorm:"not null"                 json:"-"`
	IsAdmin   bool      `gorm:"not null;default:false"   json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	// ReturnOption is only meaningful on reservations: "deliver" means the
	// customer ships the item back, "handover" means drop-off at the shop.
	ReturnOption string `json:"returnOption,omitempty"`
}

type PaymentResult struct {
	ProviderID   string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"-"`
	ProductID uint    `gorm:"not null"                 json:"product"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"             json:"id"`
	UserID          uint            `gorm:"index;not null"                       json:"user"`
	UserName        string          `gorm:"-"                                    json:"userName,omitempty"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID"                   json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"    json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_"     json:"paymentResult"`
	ItemsPrice      float64         `json:"itemsPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	IsPaid          bool            `gorm:"not null;default:false"               json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDispatched    bool            `gorm:"not null;default:false"               json:"isDispatched"`
	DispatchedAt    *time.Time      `json:"dispatchedAt,omitempty"`
	DeliveryStatus  string          `gorm:"not null;index"                       json:"deliveryStatus"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `gorm:"index"                                json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type ReservationItem struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReservationID uint      `gorm:"index;not null"           json:"-"`
	ProductID     uint      `gorm:"not null"                 json:"product"`
	Name          string    `json:"name"`
	Image         string    `json:"image"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	PickupDate    time.Time `json:"pickupDate"`
	ReturnDate    time.Time `json:"returnDate"`
	Penalty       float64   `json:"penalty"`
}

type Reservation struct {
	ID              uint              `gorm:"primaryKey;autoIncrement"          json:"id"`
	UserID          uint              `gorm:"index;not null"                    json:"user"`
	UserName        string            `gorm:"-"                                 json:"userName,omitempty"`
	OrderItems      []ReservationItem `gorm:"foreignKey:ReservationID"          json:"orderItems"`
	ShippingAddress ShippingAddress   `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	PaymentResult   PaymentResult     `gorm:"embedded;embeddedPrefix:payment_"  json:"paymentResult"`
	ItemsPrice      float64           `json:"itemsPrice"`
	ShippingPrice   float64           `json:"shippingPrice"`
	TotalPrice      float64           `json:"totalPrice"`
	IsPaid          bool              `gorm:"not null;default:false"            json:"isPaid"`
	PaidAt          *time.Time        `json:"paidAt,omitempty"`
	IsDispatched    bool              `gorm:"not null;default:false"            json:"isDispatched"`
	DispatchedAt    *time.Time        `json:"dispatchedAt,omitempty"`
	DeliveryStatus  string            `gorm:"not null;index"                    json:"deliveryStatus"`
	DeliveredAt     *time.Time        `json:"deliveredAt,omitempty"`
	ReleasedAt      *time.Time        `json:"releasedAt,omitempty"`
	ReceivedAt      *time.Time        `json:"receivedAt,omitempty"`
	ReturnedAt      *time.Time        `json:"returnedAt,omitempty"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
	CreatedAt       time.Time         `gorm:"index"                             json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
