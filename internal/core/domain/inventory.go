package domain

import (
	"strconv"
	"time"
)

const InventoryResourceType = "inventories"

// Inventory is the persisted stock level of one product.
type Inventory struct {
	ProductID int64
	Quantity  int
}

// ProductSummary is owned by the product directory and fetched per request.
type ProductSummary struct {
	ID    string
	Name  string
	Price float64
}

type InventoryAttributes struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

type InventoryData struct {
	Type       string              `json:"type"`
	ID         string              `json:"id"`
	Attributes InventoryAttributes `json:"attributes"`
}

// InventoryDocument is the JSON-API envelope returned by the read endpoint.
type InventoryDocument struct {
	Data InventoryData `json:"data"`
}

func NewInventoryDocument(product *ProductSummary, inv Inventory) InventoryDocument {
	return InventoryDocument{
		Data: InventoryData{
			Type: InventoryResourceType,
			ID:   strconv.FormatInt(inv.ProductID, 10),
			Attributes: InventoryAttributes{
				ProductID:   inv.ProductID,
				ProductName: product.Name,
				Quantity:    inv.Quantity,
			},
		},
	}
}

// InventoryChanged is emitted after every successful write.
type InventoryChanged struct {
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
