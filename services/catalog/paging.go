package catalog

import (
	"fmt"
	"math"
	"net/url"
)

const listPath = "/api/product"

func (r ListRequest) validate() error {
	if r.Limit < 1 {
		return fmt.Errorf("limit must be a positive number, got %d", r.Limit)
	}
	if r.Page < 1 {
		return fmt.Errorf("page must be a positive number, got %d", r.Page)
	}
	// offset and paging-counter must stay representable
	if r.Page-1 > (math.MaxInt-1)/r.Limit {
		return fmt.Errorf("page %d is out of range for limit %d", r.Page, r.Limit)
	}
	return nil
}

func (r ListRequest) offset() int {
	return (r.Page - 1) * r.Limit
}

func (r ListRequest) descending() bool {
	return r.Sort == sortDesc
}

func newProductPage(req ListRequest, products []Product, totalDocs int) ProductPage {
	totalPages := totalDocs / req.Limit
	if totalDocs%req.Limit != 0 {
		totalPages++
	}
	totalPages = max(totalPages, 1)

	page := ProductPage{
		Status:        "success",
		Payload:       products,
		TotalDocs:     totalDocs,
		Limit:         req.Limit,
		TotalPages:    totalPages,
		Page:          req.Page,
		PagingCounter: req.offset() + 1,
		HasPrevPage:   req.Page > 1,
		HasNextPage:   req.Page < totalPages,
		Category:      req.Category,
		Sort:          req.Sort,
		CartID:        req.CartID,
	}
	if page.HasPrevPage {
		prev := req.Page - 1
		page.PrevPage = &prev
		page.PrevLink = pageLink(req, prev)
	}
	if page.HasNextPage {
		next := req.Page + 1
		page.NextPage = &next
		page.NextLink = pageLink(req, next)
	}
	return page
}

// pageLink points to another page and keeps the other query parameters
func pageLink(req ListRequest, page int) *string {
	link := fmt.Sprintf("%s?page=%d&limit=%d", listPath, page, req.Limit)
	if req.Category != "" {
		link += "&category=" + url.QueryEscape(req.Category)
	}
	if req.Sort != "" {
		link += "&sort=" + url.QueryEscape(req.Sort)
	}
	if req.CartID != "" {
		link += "&cartId=" + url.QueryEscape(req.CartID)
	}
	return &link
}
