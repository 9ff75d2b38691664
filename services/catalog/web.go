package catalog

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/catalogshop/lib/mycontext"
	"github.com/MarcGrol/catalogshop/lib/myhttp"
	"github.com/MarcGrol/catalogshop/lib/mylog"
	"github.com/MarcGrol/catalogshop/lib/mypublisher"
	"github.com/MarcGrol/catalogshop/lib/mystore"
	"github.com/MarcGrol/catalogshop/lib/mytime"
	"github.com/MarcGrol/catalogshop/lib/myuuid"
	"github.com/MarcGrol/catalogshop/services/catalog/catalogevents"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(store mystore.Store[Product], nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	logger := mylog.New("catalog")
	return &webService{
		service: newService(store, nower, uuider, logger, pub),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	err := s.service.publisher.CreateTopic(c, catalogevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", catalogevents.TopicName, err)
	}

	// Endpoints that compose the userinterface
	router.HandleFunc("/", s.indexPage()).Methods("GET")
	router.HandleFunc("/product/new", s.newProductPage()).Methods("GET")

	router.HandleFunc("/api/product", s.productListPage()).Methods("GET")
	router.HandleFunc("/api/product", s.createProduct()).Methods("POST")
	// Must be registered before "/api/product/{code}"
	router.HandleFunc("/api/product/products/{productUID}", s.productByUIDPage()).Methods("GET")
	router.HandleFunc("/api/product/{code}", s.productByCodePage()).Methods("GET")
	router.HandleFunc("/api/product/{code}", s.updateProduct()).Methods("PUT")
	router.HandleFunc("/api/product/{code}", s.deleteProduct()).Methods("DELETE")

	return nil
}

//go:embed templates
var templateFolder embed.FS
var (
	indexPageTemplate       *template.Template
	newProductPageTemplate  *template.Template
	productListPageTemplate *template.Template
	productPageTemplate     *template.Template
)

func init() {
	indexPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/index.html"))
	newProductPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/product_new.html"))
	productListPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/products.html"))
	productPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/product.html"))
}

func (s *webService) indexPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		writer.WritePage(c, w, r, http.StatusOK, indexPageTemplate, nil)
	}
}

func (s *webService) newProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		writer.WritePage(c, w, r, http.StatusOK, newProductPageTemplate, nil)
	}
}

func (s *webService) productListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		req := newListRequest()
		err := myhttp.DecodeQuery(r, &req)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		page, err := s.service.listProducts(c, req)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 2, err)
			return
		}

		writer.WritePage(c, w, r, http.StatusOK, productListPageTemplate, page)
	}
}

func (s *webService) productByCodePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		code := mux.Vars(r)["code"]

		product, err := s.service.getProductByCode(c, code)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		writer.WritePage(c, w, r, http.StatusOK, productPageTemplate, productView{
			Product: product,
			CartID:  r.URL.Query().Get("cartId"),
		})
	}
}

func (s *webService) productByUIDPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		productUID := mux.Vars(r)["productUID"]

		product, err := s.service.getProductByUID(c, productUID)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		writer.WritePage(c, w, r, http.StatusOK, productPageTemplate, productView{
			Product: product,
			CartID:  r.URL.Query().Get("cartId"),
		})
	}
}

func (s *webService) createProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		product := Product{}
		err := myhttp.DecodeBody(r, &product)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		created, err := s.service.createProduct(c, product)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 2, err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("%s%s/%s", myhttp.HostnameWithScheme(r), listPath, url.PathEscape(created.Code)))
		writer.WritePage(c, w, r, http.StatusCreated, productPageTemplate, productView{
			Product: created,
		})
	}
}

func (s *webService) updateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		code := mux.Vars(r)["code"]

		patch := ProductPatch{}
		err := myhttp.DecodeBody(r, &patch)
		if err != nil {
			writer.WriteError(c, w, 1, err)
			return
		}

		ack, err := s.service.updateProduct(c, code, patch)
		if err != nil {
			writer.WriteError(c, w, 2, err)
			return
		}

		writer.Write(c, w, http.StatusOK, ack)
	}
}

func (s *webService) deleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		code := mux.Vars(r)["code"]

		err := s.service.deleteProduct(c, code)
		if err != nil {
			writer.WriteErrorPage(c, w, r, 1, err)
			return
		}

		http.Redirect(w, r, listPath, http.StatusSeeOther)
	}
}
