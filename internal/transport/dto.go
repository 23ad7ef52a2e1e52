package transport

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rentkart/rentkart/internal/models"
)

// FlexBool accepts JSON booleans as well as the legacy "true"/"false"
// string form the old API emitted for the admin flag.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case string:
		parsed, err := strconv.ParseBool(t)
		if err != nil {
			return fmt.Errorf("invalid bool %q", t)
		}
		*b = FlexBool(parsed)
	case nil:
		*b = false
	default:
		return fmt.Errorf("invalid bool %v", v)
	}
	return nil
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileEditRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserUpdateRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	IsAdmin FlexBool `json:"isAdmin"`
}

type UserResponse struct {
	ID      uint   `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token,omitempty"`
}

type ProductUpdateRequest struct {
	Name                string  `json:"name"`
	Slug                string  `json:"slug"`
	Image               string  `json:"image"`
	Brand               string  `json:"brand"`
	Category            string  `json:"category"`
	Description         string  `json:"description"`
	Price               float64 `json:"price"`
	Rent                float64 `json:"rent"`
	Penalty             float64 `json:"penalty"`
	CountInStock        int     `json:"countInStock"`
	CountInStockForRent int     `json:"countInStockForRent"`
}

type ReviewRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

type CreateOrderItem struct {
	ProductID uint    `json:"_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CreateOrderRequest struct {
	OrderItems      []CreateOrderItem      `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

type CreateReservationItem struct {
	ProductID  uint      `json:"_id"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	PickupDate time.Time `json:"pickupDate"`
	ReturnDate time.Time `json:"returnDate"`
	Penalty    float64   `json:"penalty"`
}

type CreateReservationRequest struct {
	OrderItems      []CreateReservationItem `json:"orderItems"`
	ShippingAddress models.ShippingAddress  `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	ItemsPrice      float64                 `json:"itemsPrice"`
	ShippingPrice   float64                 `json:"shippingPrice"`
	TotalPrice      float64                 `json:"totalPrice"`
}

type PayRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type DateRangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ByLocationRequest struct {
	Address string `json:"address"`
}
