package cart

import (
	"time"

	"github.com/MarcGrol/catalogshop/services/catalog"
)

type Cart struct {
	UID          string     `json:"uid" bson:"_id" datastore:"uid"`
	Products     []LineItem `json:"products" bson:"products" datastore:"products"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt" datastore:"createdAt"`
	LastModified time.Time  `json:"lastModified" bson:"lastModified" datastore:"lastModified"`
}

// LineItem refers to a product by uid. The product may have been deleted in the meantime.
type LineItem struct {
	Product  string `json:"product" bson:"product" datastore:"product"`
	Quantity int    `json:"quantity" bson:"quantity" datastore:"quantity"`
}

// CartDetails is a cart with its products resolved to their current data.
type CartDetails struct {
	UID           string         `json:"uid"`
	Products      []ResolvedItem `json:"products"`
	TotalQuantity int            `json:"totalQuantity"`
	TotalPrice    float64        `json:"totalPrice"`
	CreatedAt     time.Time      `json:"createdAt"`
	LastModified  time.Time      `json:"lastModified"`
}

type ResolvedItem struct {
	ProductUID string           `json:"productUid"`
	Product    *catalog.Product `json:"product"`
	Quantity   int              `json:"quantity"`
}

type cartResponse struct {
	Message string `json:"message"`
	Cart    Cart   `json:"cart"`
}

func (c *Cart) indexOf(productUID string) int {
	for idx, item := range c.Products {
		if item.Product == productUID {
			return idx
		}
	}
	return -1
}

// mergeLineItems collapses duplicate product references into one line item with the summed quantity.
func mergeLineItems(items []LineItem) []LineItem {
	merged := []LineItem{}
	positions := map[string]int{}
	for _, item := range items {
		idx, exists := positions[item.Product]
		if exists {
			merged[idx].Quantity += item.Quantity
			continue
		}
		positions[item.Product] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
