package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/MarcGrol/catalogshop/lib/myerrors"
	"github.com/MarcGrol/catalogshop/lib/mylog"
	"github.com/MarcGrol/catalogshop/lib/mystore"
	"github.com/MarcGrol/catalogshop/services/catalog/catalogevents"
)

func (s *service) listProducts(c context.Context, req ListRequest) (ProductPage, error) {
	s.logger.Log(c, "", mylog.SeverityInfo, "Fetch page %d of products (limit:%d, category:'%s', sort:'%s')", req.Page, req.Limit, req.Category, req.Sort)

	err := req.validate()
	if err != nil {
		return ProductPage{}, myerrors.NewInvalidInputError(err)
	}

	q := mystore.PageQuery{
		Offset: req.offset(),
		Limit:  req.Limit,
	}
	if req.Category != "" {
		q.Filters = append(q.Filters, mystore.Filter{Field: "category", Compare: mystore.CompareEqual, Value: req.Category})
	}
	if req.Sort != "" {
		q.OrderBy = sortField
		q.Descending = req.descending()
	}

	products, total, err := s.productStore.Paginate(c, q)
	if err != nil {
		return ProductPage{}, myerrors.NewInternalError(fmt.Errorf("error fetching products: %s", err))
	}

	return newProductPage(req, products, total), nil
}

func (s *service) getProductByCode(c context.Context, code string) (Product, error) {
	s.logger.Log(c, code, mylog.SeverityInfo, "Fetch product with code %s", code)

	product, found, err := s.findByCode(c, code)
	if err != nil {
		return Product{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Product{}, myerrors.NewNotFoundErrorf("product with code %s not found", code)
	}

	return product, nil
}

func (s *service) getProductByUID(c context.Context, productUID string) (Product, error) {
	s.logger.Log(c, productUID, mylog.SeverityInfo, "Fetch product with uid %s", productUID)

	product, found, err := s.productStore.Get(c, productUID)
	if err != nil {
		return Product{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Product{}, myerrors.NewNotFoundErrorf("product with uid %s not found", productUID)
	}

	return product, nil
}

func (s *service) createProduct(c context.Context, product Product) (Product, error) {
	if product.Code == "" {
		return Product{}, myerrors.NewInvalidInputErrorf("missing product code")
	}

	product.UID = s.uuider.Create()
	product.CreatedAt = s.nower.Now()
	product.LastModified = product.CreatedAt

	s.logger.Log(c, product.UID, mylog.SeverityInfo, "Creating product %s with uid %s", product.Code, product.UID)

	err := s.productStore.RunInTransaction(c, func(c context.Context) error {
		_, exists, err := s.findByCode(c, product.Code)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if exists {
			return myerrors.NewInvalidInputErrorf("product with code %s already exists", product.Code)
		}

		err = s.productStore.Put(c, product.UID, product)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, catalogevents.TopicName, catalogevents.ProductCreated{
			ProductUID: product.UID,
			Code:       product.Code,
			Category:   product.Category,
			Price:      product.Price,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return Product{}, err
	}

	return product, nil
}

func (s *service) updateProduct(c context.Context, code string, patch ProductPatch) (UpdateAcknowledgement, error) {
	s.logger.Log(c, code, mylog.SeverityInfo, "Update product with code %s", code)

	if patch.Code != nil && *patch.Code == "" {
		return UpdateAcknowledgement{}, myerrors.NewInvalidInputErrorf("product code cannot be made empty")
	}

	now := s.nower.Now()
	ack := UpdateAcknowledgement{}

	err := s.productStore.RunInTransaction(c, func(c context.Context) error {
		product, found, err := s.findByCode(c, code)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundErrorf("product with code %s not found", code)
		}
		ack.MatchedCount = 1

		if patch.Code != nil && *patch.Code != code {
			_, taken, err := s.findByCode(c, *patch.Code)
			if err != nil {
				return myerrors.NewInternalError(err)
			}
			if taken {
				return myerrors.NewInvalidInputErrorf("product with code %s already exists", *patch.Code)
			}
		}

		modified := applyPatch(&product, patch)
		if !modified {
			return nil
		}
		ack.ModifiedCount = 1
		product.LastModified = now

		err = s.productStore.Put(c, product.UID, product)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, catalogevents.TopicName, catalogevents.ProductUpdated{
			ProductUID:   product.UID,
			Code:         product.Code,
			LastModified: product.LastModified,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return UpdateAcknowledgement{}, err
	}

	ack.Message = fmt.Sprintf("Product %s updated", code)
	return ack, nil
}

func (s *service) deleteProduct(c context.Context, code string) error {
	s.logger.Log(c, code, mylog.SeverityInfo, "Delete product with code %s", code)

	return s.productStore.RunInTransaction(c, func(c context.Context) error {
		product, found, err := s.findByCode(c, code)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundErrorf("product with code %s not found", code)
		}

		err = s.productStore.Delete(c, product.UID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, catalogevents.TopicName, catalogevents.ProductDeleted{
			ProductUID: product.UID,
			Code:       product.Code,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
}

func (s *service) findByCode(c context.Context, code string) (Product, bool, error) {
	products, err := s.productStore.Query(c, []mystore.Filter{
		{Field: "code", Compare: mystore.CompareEqual, Value: code},
	}, "")
	if err != nil {
		return Product{}, false, fmt.Errorf("error fetching product with code %s: %s", code, err)
	}
	if len(products) == 0 {
		return Product{}, false, nil
	}
	return products[0], true, nil
}

// applyPatch sets the supplied fields and reports whether anything changed
func applyPatch(product *Product, patch ProductPatch) bool {
	modified := false
	set := func(changed bool) {
		modified = modified || changed
	}

	if patch.Code != nil {
		set(product.Code != *patch.Code)
		product.Code = *patch.Code
	}
	if patch.Title != nil {
		set(product.Title != *patch.Title)
		product.Title = *patch.Title
	}
	if patch.Description != nil {
		set(product.Description != *patch.Description)
		product.Description = *patch.Description
	}
	if patch.Category != nil {
		set(product.Category != *patch.Category)
		product.Category = *patch.Category
	}
	if patch.Price != nil {
		set(product.Price != *patch.Price)
		product.Price = *patch.Price
	}
	if patch.Status != nil {
		set(product.Status != *patch.Status)
		product.Status = *patch.Status
	}
	if patch.Stock != nil {
		set(product.Stock != *patch.Stock)
		product.Stock = *patch.Stock
	}
	if patch.Thumbnails != nil {
		set(!slices.Equal(product.Thumbnails, *patch.Thumbnails))
		product.Thumbnails = *patch.Thumbnails
	}

	return modified
}
