package cart

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/catalogshop/lib/mycontext"
	"github.com/MarcGrol/catalogshop/lib/myerrors"
	"github.com/MarcGrol/catalogshop/lib/myhttp"
	"github.com/MarcGrol/catalogshop/lib/mylog"
	"github.com/MarcGrol/catalogshop/lib/mypublisher"
	"github.com/MarcGrol/catalogshop/lib/mystore"
	"github.com/MarcGrol/catalogshop/lib/mytime"
	"github.com/MarcGrol/catalogshop/lib/myuuid"
	"github.com/MarcGrol/catalogshop/services/cart/cartevents"
	"github.com/MarcGrol/catalogshop/services/catalog"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(cartStore mystore.Store[Cart], productStore mystore.Store[catalog.Product], nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	logger := mylog.New("cart")
	return &webService{
		service: newService(cartStore, productStore, nower, uuider, logger, pub),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	err := s.service.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", cartevents.TopicName, err)
	}

	// Endpoints that compose the userinterface
	router.HandleFunc("/cart", s.createCartPage()).Methods("POST")
	router.HandleFunc("/cart/{cartUID}", s.cartPage()).Methods("GET")
	router.HandleFunc("/cart/{cartUID}/product/{productUID}", s.addItem()).Methods("POST")

	router.HandleFunc("/cart/{cartUID}", s.replaceItems()).Methods("PUT")
	router.HandleFunc("/cart/{cartUID}", s.clearCart()).Methods("DELETE")
	router.HandleFunc("/cart/{cartUID}/products", s.replaceProducts()).Methods("PUT")
	router.HandleFunc("/cart/{cartUID}/products/{productUID}", s.setQuantity()).Methods("PUT")
	router.HandleFunc("/cart/{cartUID}/products/{productUID}", s.removeItem()).Methods("DELETE")

	return nil
}

//go:embed templates
var templateFolder embed.FS
var (
	cartPageTemplate        *template.Template
	cartCreatedPageTemplate *template.Template
)

func init() {
	cartPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/cart.html"))
	cartCreatedPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/cart_created.html"))
}

func (s *webService) createCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cart, err := s.service.createCart(c)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		writer.WritePage(c, w, r, http.StatusCreated, cartCreatedPageTemplate, cart)
	}
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		details, err := s.service.getCart(c, cartUID)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		writer.WritePage(c, w, r, http.StatusOK, cartPageTemplate, details)
	}
}

func (s *webService) addItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		productUID := mux.Vars(r)["productUID"]

		_, err := s.service.addItem(c, cartUID, productUID)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		// Back to the product so the shopper can continue
		http.Redirect(w, r, fmt.Sprintf("/api/product/products/%s?cartId=%s", url.PathEscape(productUID), url.QueryEscape(cartUID)), http.StatusSeeOther)
	}
}

func (s *webService) removeItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		productUID := mux.Vars(r)["productUID"]

		cart, err := s.service.removeItem(c, cartUID, productUID)
		if err != nil {
			if myhttp.WantsHTML(r) {
				writer.WriteErrorPage(c, w, r, 1, err)
				return
			}
			writer.WriteError(c, w, 1, err)
			return
		}

		if myhttp.WantsHTML(r) {
			http.Redirect(w, r, cartPath(cartUID), http.StatusSeeOther)
			return
		}

		writer.Write(c, w, http.StatusOK, cartResponse{
			Message: "Product removed from cart",
			Cart:    cart,
		})
	}
}

func (s *webService) setQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		productUID := mux.Vars(r)["productUID"]

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writer.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		quantity, err := parseQuantity(body)
		if err != nil {
			writer.WriteError(c, w, 2, err)
			return
		}

		cart, err := s.service.setQuantity(c, cartUID, productUID, quantity)
		if err != nil {
			writer.WriteError(c, w, 3, err)
			return
		}

		writer.Write(c, w, http.StatusOK, cartResponse{
			Message: "Quantity updated",
			Cart:    cart,
		})
	}
}

func (s *webService) replaceItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writer.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		items, err := parseLineItems(body)
		if err != nil {
			writer.WriteError(c, w, 2, err)
			return
		}

		cart, err := s.service.replaceItems(c, cartUID, items)
		if err != nil {
			writer.WriteError(c, w, 3, err)
			return
		}

		writer.Write(c, w, http.StatusOK, cartResponse{
			Message: "Cart updated",
			Cart:    cart,
		})
	}
}

func (s *webService) replaceProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writer.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		req := struct {
			Products json.RawMessage `json:"products"`
		}{}
		err = json.Unmarshal(body, &req)
		if err != nil {
			writer.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("an object with an array of products must be provided: %s", err))
			return
		}

		items, err := parseLineItems(req.Products)
		if err != nil {
			writer.WriteError(c, w, 3, err)
			return
		}

		cart, err := s.service.replaceItems(c, cartUID, items)
		if err != nil {
			writer.WriteError(c, w, 4, err)
			return
		}

		writer.Write(c, w, http.StatusOK, cartResponse{
			Message: "Products added to cart",
			Cart:    cart,
		})
	}
}

func (s *webService) clearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		cart, err := s.service.clearCart(c, cartUID)
		if err != nil {
			if myhttp.WantsHTML(r) {
				writer.WriteErrorPage(c, w, r, 1, err)
				return
			}
			writer.WriteError(c, w, 1, err)
			return
		}

		if myhttp.WantsHTML(r) {
			http.Redirect(w, r, cartPath(cartUID), http.StatusSeeOther)
			return
		}

		writer.Write(c, w, http.StatusOK, cartResponse{
			Message: "All products removed from cart",
			Cart:    cart,
		})
	}
}

func cartPath(cartUID string) string {
	return "/cart/" + url.PathEscape(cartUID)
}

// parseLineItems only accepts a json array of line-items
func parseLineItems(raw []byte) ([]LineItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, myerrors.NewInvalidInputErrorf("an array of products must be provided")
	}

	items := []LineItem{}
	err := json.Unmarshal(trimmed, &items)
	if err != nil {
		return nil, myerrors.NewInvalidInputErrorf("invalid array of products: %s", err)
	}
	return items, nil
}

// parseQuantity accepts {"quantity": 3} and {"quantity": "3"}; a missing or zero quantity is invalid
func parseQuantity(body []byte) (int, error) {
	req := struct {
		Quantity json.RawMessage `json:"quantity"`
	}{}
	err := json.Unmarshal(body, &req)
	if err != nil {
		return 0, myerrors.NewInvalidInputErrorf("invalid body: %s", err)
	}

	raw := bytes.TrimSpace(req.Quantity)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, myerrors.NewInvalidInputErrorf("quantity must be provided")
	}

	quantity := 0
	err = json.Unmarshal(raw, &quantity)
	if err != nil {
		asText := ""
		if json.Unmarshal(raw, &asText) != nil {
			return 0, myerrors.NewInvalidInputErrorf("quantity must be a number, got %s", raw)
		}
		quantity, err = strconv.Atoi(strings.TrimSpace(asText))
		if err != nil {
			return 0, myerrors.NewInvalidInputErrorf("quantity must be a number, got %s", raw)
		}
	}

	if quantity == 0 {
		return 0, myerrors.NewInvalidInputErrorf("quantity must be provided")
	}
	return quantity, nil
}
