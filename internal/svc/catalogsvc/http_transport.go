package catalogsvc

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport serves the product catalog.
type HTTPTransport struct {
	catalogSvc *CatalogService
	verifier   http_.TokenVerifier
	log        logging.Logger
	mux        *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a catalog transport. Administrative routes require a token accepted by verifier.
func NewHTTPTransport(catalogSvc *CatalogService, verifier http_.TokenVerifier) *HTTPTransport {
	ht := &HTTPTransport{
		catalogSvc: catalogSvc,
		verifier:   verifier,
		log:        logging.GetLogger("svc.catalogsvc.http_transport"),
		mux:        http.NewServeMux(),
	}
	ht.RegisterRoutes(ht.mux)

	return ht
}

// RegisterRoutes mounts the catalog endpoints:
//   - GET /api/products: list listed products
//   - GET /api/products/{id}: get a listed product
//   - POST /api/admin/products: create a product
//   - PUT /api/admin/products/{id}: update a product
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	authorize := http_.Authorize(ht.verifier, ht.log)

	mux.Handle("GET /api/products", http_.Handle(ht.log, "list products", ht.handleList))
	mux.Handle("GET /api/products/{id}", http_.Handle(ht.log, "get product", ht.handleGet))
	mux.Handle("POST /api/admin/products", authorize(http_.Handle(ht.log, "create product", ht.handleCreate)))
	mux.Handle("PUT /api/admin/products/{id}", authorize(http_.Handle(ht.log, "update product", ht.handleUpdate)))
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) error {
	page, pageSize, err := http_.PageParams(r)
	if err != nil {
		return err
	}

	products, err := ht.catalogSvc.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, products)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) error {
	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	product, err := ht.catalogSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, product)
}

// Expects form parameters: name, price, stock and optionally description, categoryId, status.
func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) error {
	for _, name := range []string{"name", "price", "stock"} {
		if _, err := http_.RequiredFormValue(r, name); err != nil {
			return err
		}
	}

	patch, err := parseProductForm(r)
	if err != nil {
		return err
	}

	var product domain.Product

	patch.apply(&product)

	if err := ht.catalogSvc.CreateProduct(r.Context(), &product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return http_.WriteJSON(w, http.StatusCreated, product)
}

// Accepts the same form parameters as create; omitted parameters keep their stored value.
func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	patch, err := parseProductForm(r)
	if err != nil {
		return err
	}

	product, err := ht.catalogSvc.UpdateProduct(r.Context(), id, patch.apply)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, product)
}

// productPatch holds the product parameters present in a request.
type productPatch struct {
	name        *string
	description *string
	price       *decimal.Decimal
	stock       *int
	categoryID  *int64
	status      *domain.ProductStatus
}

func parseProductForm(r *http.Request) (productPatch, error) {
	var patch productPatch

	if err := r.ParseForm(); err != nil {
		return patch, errors.Join(domain.ErrBadRequest, err)
	}

	if v := r.FormValue("name"); v != "" {
		patch.name = &v
	}

	if _, ok := r.Form["description"]; ok {
		v := r.FormValue("description")
		patch.description = &v
	}

	if v := r.FormValue("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return patch, errors.Join(domain.ErrBadRequest, errors.New("price must be a decimal number"))
		}

		patch.price = &price
	}

	if v := r.FormValue("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return patch, errors.Join(domain.ErrBadRequest, errors.New("stock must be an integer"))
		}

		patch.stock = &stock
	}

	if v := r.FormValue("categoryId"); v != "" {
		categoryID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return patch, errors.Join(domain.ErrBadRequest, errors.New("categoryId must be an integer"))
		}

		patch.categoryID = &categoryID
	}

	if v := r.FormValue("status"); v != "" {
		status := domain.ProductStatus(v)
		patch.status = &status
	}

	return patch, nil
}

func (patch productPatch) apply(p *domain.Product) {
	if patch.name != nil {
		p.Name = *patch.name
	}

	if patch.description != nil {
		p.Description = *patch.description
	}

	if patch.price != nil {
		p.Price = *patch.price
	}

	if patch.stock != nil {
		p.Stock = *patch.stock
	}

	if patch.categoryID != nil {
		p.CategoryID = *patch.categoryID
	}

	if patch.status != nil {
		p.Status = *patch.status
	}
}
