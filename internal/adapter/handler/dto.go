package handler

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/services"
)

type locationRequest struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lng" validate:"gte=-180,lte=180"`
	Name      string  `json:"name" validate:"max=200"`
}

type cellRequest struct {
	Row      int    `json:"row" validate:"gte=0,lt=5"`
	Col      int    `json:"col" validate:"gte=0,lt=5"`
	Category string `json:"category" validate:"required"`
}

type publishEventRequest struct {
	Name        string                     `json:"eventName" validate:"required,max=120"`
	ArtistName  string                     `json:"artistName" validate:"max=120"`
	Category    string                     `json:"eventCategory" validate:"max=60"`
	Description string                     `json:"eventDescription" validate:"max=2000"`
	PosterURL   string                     `json:"poster" validate:"omitempty,url"`
	DateTime    time.Time                  `json:"eventDate" validate:"required"`
	Location    locationRequest            `json:"location"`
	Targets     map[string]int             `json:"targets" validate:"required,dive,gte=0,lte=25"`
	Prices      map[string]decimal.Decimal `json:"prices" validate:"required"`
	Assignments []cellRequest              `json:"assignments" validate:"required,max=25,dive"`
}

func (r publishEventRequest) toService() (services.PublishEventRequest, error) {
	out := services.PublishEventRequest{
		Details: domain.EventDetails{
			Name:        r.Name,
			ArtistName:  r.ArtistName,
			Category:    r.Category,
			Description: r.Description,
			PosterURL:   r.PosterURL,
			DateTime:    r.DateTime,
			Location: domain.Location{
				Latitude:  r.Location.Latitude,
				Longitude: r.Location.Longitude,
				Name:      r.Location.Name,
			},
		},
		Targets: make(map[domain.Category]int, len(r.Targets)),
		Prices:  make(map[domain.Category]decimal.Decimal, len(r.Prices)),
	}
	for name, n := range r.Targets {
		c, err := domain.ParseCategory(name)
		if err != nil {
			return out, err
		}
		out.Targets[c] = n
	}
	for name, p := range r.Prices {
		c, err := domain.ParseCategory(name)
		if err != nil {
			return out, err
		}
		out.Prices[c] = p
	}
	for _, cell := range r.Assignments {
		c, err := domain.ParseCategory(cell.Category)
		if err != nil {
			return out, fmt.Errorf("cell %d-%d: %w", cell.Row, cell.Col, err)
		}
		out.Assignments = append(out.Assignments, services.CellAssignment{Row: cell.Row, Col: cell.Col, Category: c})
	}
	return out, nil
}

type purchaseRequest struct {
	IntentID      string `json:"intentId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

type profileRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
}

type relayRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}
