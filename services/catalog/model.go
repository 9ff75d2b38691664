package catalog

import "time"

// Product is stored under the same field names in every backend, so filters on "code" or "category" are portable.
type Product struct {
	UID          string    `json:"uid" bson:"_id" datastore:"uid" form:"-"`
	Code         string    `json:"code" bson:"code" datastore:"code" form:"code"`
	Title        string    `json:"title" bson:"title" datastore:"title" form:"title"`
	Description  string    `json:"description" bson:"description" datastore:"description,noindex" form:"description"`
	Category     string    `json:"category" bson:"category" datastore:"category" form:"category"`
	Price        float64   `json:"price" bson:"price" datastore:"price" form:"price"`
	Status       bool      `json:"status" bson:"status" datastore:"status" form:"status"`
	Stock        int       `json:"stock" bson:"stock" datastore:"stock" form:"stock"`
	Thumbnails   []string  `json:"thumbnails" bson:"thumbnails" datastore:"thumbnails,noindex" form:"thumbnails"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" datastore:"createdAt" form:"-"`
	LastModified time.Time `json:"lastModified" bson:"lastModified" datastore:"lastModified" form:"-"`
}

// ProductPatch only carries the fields a caller wants to change.
type ProductPatch struct {
	Code        *string   `json:"code" form:"code"`
	Title       *string   `json:"title" form:"title"`
	Description *string   `json:"description" form:"description"`
	Category    *string   `json:"category" form:"category"`
	Price       *float64  `json:"price" form:"price"`
	Status      *bool     `json:"status" form:"status"`
	Stock       *int      `json:"stock" form:"stock"`
	Thumbnails  *[]string `json:"thumbnails" form:"thumbnails"`
}

type ListRequest struct {
	Limit    int    `form:"limit"`
	Page     int    `form:"page"`
	Category string `form:"category"`
	Sort     string `form:"sort"`
	// CartID is threaded through so products can be added to the cart being filled
	CartID string `form:"cartId"`
}

const (
	defaultLimit = 10
	defaultPage  = 1
	sortField    = "price"
	sortDesc     = "desc"
)

func newListRequest() ListRequest {
	return ListRequest{
		Limit: defaultLimit,
		Page:  defaultPage,
	}
}

// ProductPage is the envelope around one page of the catalog.
type ProductPage struct {
	Status        string    `json:"status"`
	Payload       []Product `json:"payload"`
	TotalDocs     int       `json:"totalDocs"`
	Limit         int       `json:"limit"`
	TotalPages    int       `json:"totalPages"`
	Page          int       `json:"page"`
	PagingCounter int       `json:"pagingCounter"`
	HasPrevPage   bool      `json:"hasPrevPage"`
	HasNextPage   bool      `json:"hasNextPage"`
	PrevPage      *int      `json:"prevPage"`
	NextPage      *int      `json:"nextPage"`
	PrevLink      *string   `json:"prevLink"`
	NextLink      *string   `json:"nextLink"`
	Category      string    `json:"category,omitempty"`
	Sort          string    `json:"sort,omitempty"`
	CartID        string    `json:"cartId,omitempty"`
}

type UpdateAcknowledgement struct {
	Message       string `json:"message"`
	MatchedCount  int    `json:"matchedCount"`
	ModifiedCount int    `json:"modifiedCount"`
}

type productView struct {
	Product Product `json:"product"`
	CartID  string  `json:"cartId,omitempty"`
}
