package models

import "time"

type LineItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	SupplierID string  `json:"supplierId,omitempty"`
}

type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Trip is a sales trip of a salesperson to a set of customers.
type Trip struct {
	ID          string    `json:"id"`
	Salesperson string    `json:"salesperson"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status"`
}

type Invoice struct {
	ID       string     `json:"id"`
	Number   string     `json:"number"`
	Customer string     `json:"customer"`
	IssuedAt time.Time  `json:"issuedAt"`
	DueAt    time.Time  `json:"dueAt"`
	Status   string     `json:"status"`
	Lines    []LineItem `json:"lines"`
	Total    float64    `json:"total"`
}

type PurchaseOrder struct {
	ID         string     `json:"id"`
	Number     string     `json:"number"`
	SupplierID string     `json:"supplierId"`
	OrderedAt  time.Time  `json:"orderedAt"`
	Status     string     `json:"status"`
	Lines      []LineItem `json:"lines"`
	Total      float64    `json:"total"`
}

// LinesTotal sums quantity times unit price over all lines.
func LinesTotal(lines []LineItem) float64 {
	total := 0.0
	for _, l := range lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return total
}
