package cart

import (
	"context"
	"fmt"

	"github.com/MarcGrol/catalogshop/lib/myerrors"
	"github.com/MarcGrol/catalogshop/lib/myevents"
	"github.com/MarcGrol/catalogshop/lib/mylog"
	"github.com/MarcGrol/catalogshop/services/cart/cartevents"
)

func (s *service) createCart(c context.Context) (Cart, error) {
	cartUID := s.uuider.Create()
	now := s.nower.Now()
	cart := Cart{
		UID:          cartUID,
		Products:     []LineItem{},
		CreatedAt:    now,
		LastModified: now,
	}

	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Creating new cart with uid %s", cartUID)

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		err := s.cartStore.Put(c, cartUID, cart)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartCreated{
			CartUID:   cartUID,
			CreatedAt: cart.CreatedAt,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	return cart, nil
}

func (s *service) getCart(c context.Context, cartUID string) (CartDetails, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Fetch details of cart uid %s", cartUID)

	cart, err := s.fetchCart(c, cartUID)
	if err != nil {
		return CartDetails{}, err
	}

	details := CartDetails{
		UID:          cart.UID,
		Products:     []ResolvedItem{},
		CreatedAt:    cart.CreatedAt,
		LastModified: cart.LastModified,
	}
	for _, item := range cart.Products {
		resolved := ResolvedItem{
			ProductUID: item.Product,
			Quantity:   item.Quantity,
		}

		product, found, err := s.productStore.Get(c, item.Product)
		if err != nil {
			return CartDetails{}, myerrors.NewInternalError(err)
		}
		if found {
			resolved.Product = &product
			details.TotalPrice += product.Price * float64(item.Quantity)
		} else {
			s.logger.Log(c, cartUID, mylog.SeverityWarn, "Cart %s refers to unknown product %s", cartUID, item.Product)
		}

		details.TotalQuantity += item.Quantity
		details.Products = append(details.Products, resolved)
	}

	return details, nil
}

func (s *service) addItem(c context.Context, cartUID string, productUID string) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Add product %s to cart %s", productUID, cartUID)

	return s.updateCart(c, cartUID, func(c context.Context, cart *Cart) (myevents.Event, error) {
		_, found, err := s.productStore.Get(c, productUID)
		if err != nil {
			return nil, myerrors.NewInternalError(err)
		}
		if !found {
			return nil, myerrors.NewNotFoundErrorf("product with uid %s not found", productUID)
		}

		idx := cart.indexOf(productUID)
		if idx < 0 {
			cart.Products = append(cart.Products, LineItem{Product: productUID, Quantity: 1})
			idx = len(cart.Products) - 1
		} else {
			cart.Products[idx].Quantity++
		}

		return cartevents.ItemAdded{
			CartUID:      cartUID,
			ProductUID:   productUID,
			Quantity:     cart.Products[idx].Quantity,
			LastModified: cart.LastModified,
		}, nil
	})
}

func (s *service) removeItem(c context.Context, cartUID string, productUID string) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Remove product %s from cart %s", productUID, cartUID)

	return s.updateCart(c, cartUID, func(c context.Context, cart *Cart) (myevents.Event, error) {
		remaining := []LineItem{}
		for _, item := range cart.Products {
			if item.Product != productUID {
				remaining = append(remaining, item)
			}
		}
		if len(remaining) == len(cart.Products) {
			// nothing to remove
			return nil, nil
		}
		cart.Products = remaining

		return cartevents.ItemRemoved{
			CartUID:      cartUID,
			ProductUID:   productUID,
			LastModified: cart.LastModified,
		}, nil
	})
}

func (s *service) setQuantity(c context.Context, cartUID string, productUID string, quantity int) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Set quantity of product %s in cart %s to %d", productUID, cartUID, quantity)

	if quantity == 0 {
		return Cart{}, myerrors.NewInvalidInputErrorf("quantity must be provided")
	}

	return s.updateCart(c, cartUID, func(c context.Context, cart *Cart) (myevents.Event, error) {
		idx := cart.indexOf(productUID)
		if idx < 0 {
			return nil, myerrors.NewNotFoundErrorf("product %s is not in cart %s", productUID, cartUID)
		}
		cart.Products[idx].Quantity = quantity

		return cartevents.QuantityUpdated{
			CartUID:      cartUID,
			ProductUID:   productUID,
			Quantity:     quantity,
			LastModified: cart.LastModified,
		}, nil
	})
}

func (s *service) replaceItems(c context.Context, cartUID string, items []LineItem) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Replace products of cart %s with %d line-items", cartUID, len(items))

	for idx, item := range items {
		if item.Product == "" {
			return Cart{}, myerrors.NewInvalidInputErrorf("line-item %d has no product", idx)
		}
	}
	merged := mergeLineItems(items)

	return s.updateCart(c, cartUID, func(c context.Context, cart *Cart) (myevents.Event, error) {
		cart.Products = merged

		return cartevents.ItemsReplaced{
			CartUID:      cartUID,
			ItemCount:    len(merged),
			LastModified: cart.LastModified,
		}, nil
	})
}

func (s *service) clearCart(c context.Context, cartUID string) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Clear cart %s", cartUID)

	return s.updateCart(c, cartUID, func(c context.Context, cart *Cart) (myevents.Event, error) {
		cart.Products = []LineItem{}

		return cartevents.CartCleared{
			CartUID:      cartUID,
			LastModified: cart.LastModified,
		}, nil
	})
}

func (s *service) fetchCart(c context.Context, cartUID string) (Cart, error) {
	cart, found, err := s.cartStore.Get(c, cartUID)
	if err != nil {
		return Cart{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Cart{}, myerrors.NewNotFoundError(fmt.Errorf("cart with uid %s not found", cartUID))
	}
	return cart, nil
}

// updateCart runs a read-modify-write of a cart in one transaction. The cart is only stored
// when mutate returns an event. LastModified is already set when mutate runs.
func (s *service) updateCart(c context.Context, cartUID string, mutate func(c context.Context, cart *Cart) (myevents.Event, error)) (Cart, error) {
	now := s.nower.Now()

	var cart Cart
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		cart, err = s.fetchCart(c, cartUID)
		if err != nil {
			return err
		}

		previous := cart.LastModified
		cart.LastModified = now

		event, err := mutate(c, &cart)
		if err != nil {
			return err
		}
		if event == nil {
			cart.LastModified = previous
			return nil
		}

		err = s.cartStore.Put(c, cartUID, cart)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, cartevents.TopicName, event)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	return cart, nil
}
