package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autocare/autocare-backend/internal/products"
	pkgerrors "github.com/autocare/autocare-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubProductsService struct {
	list    *products.ListResponse
	product *products.ProductDTO
	err     error
	gotList *products.ListInput
	gotSlug string
}

func (s *stubProductsService) Browse(ctx context.Context, input products.ListInput) (*products.ListResponse, error) {
	s.gotList = &input
	return s.list, s.err
}

func (s *stubProductsService) GetBySlug(ctx context.Context, slug string) (*products.ProductDTO, error) {
	s.gotSlug = slug
	return s.product, s.err
}

func (s *stubProductsService) Create(ctx context.Context, input products.CreateProductInput) (*products.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductsService) Update(ctx context.Context, id uuid.UUID, input products.UpdateProductInput) (*products.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func TestProductsListParsesFilters(t *testing.T) {
	svc := &stubProductsService{list: &products.ListResponse{Products: []products.ProductDTO{}}}
	handler := ProductsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/products?q=brake&category=brakes&brand=bosch&minPrice=100&maxPrice=900&inStock=true&carBrand=Honda&carModel=Civic&year=2019&sort=price_asc&limit=24", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	got := svc.gotList
	if got == nil {
		t.Fatal("expected browse to be called")
	}
	if got.Filters.Query != "brake" || got.Filters.Category != "brakes" || got.Filters.Brand != "bosch" {
		t.Fatalf("unexpected filters %+v", got.Filters)
	}
	if got.Filters.MinPrice == nil || *got.Filters.MinPrice != 100 {
		t.Fatalf("expected min price 100, got %+v", got.Filters.MinPrice)
	}
	if got.Filters.MaxPrice == nil || *got.Filters.MaxPrice != 900 {
		t.Fatalf("expected max price 900, got %+v", got.Filters.MaxPrice)
	}
	if !got.Filters.InStock {
		t.Fatal("expected in-stock filter set")
	}
	if got.Filters.CarBrand != "Honda" || got.Filters.CarModel != "Civic" {
		t.Fatalf("unexpected compatibility filter %+v", got.Filters)
	}
	if got.Filters.Year == nil || *got.Filters.Year != 2019 {
		t.Fatalf("expected year 2019, got %+v", got.Filters.Year)
	}
	if got.Sort != products.SortPriceAsc {
		t.Fatalf("expected price_asc sort, got %s", got.Sort)
	}
	if got.Pagination.Limit != 24 {
		t.Fatalf("expected limit 24, got %d", got.Pagination.Limit)
	}
}

func TestProductsListDefaultsToNewest(t *testing.T) {
	svc := &stubProductsService{list: &products.ListResponse{}}
	handler := ProductsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotList.Sort != products.SortNewest {
		t.Fatalf("expected newest sort by default, got %s", svc.gotList.Sort)
	}
}

func TestProductsListRejectsBadSortAndCursor(t *testing.T) {
	svc := &stubProductsService{list: &products.ListResponse{}}
	handler := ProductsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=oldest", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad sort, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?cursor=%25%25not-base64", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad cursor, got %d", resp.Code)
	}
}

func TestProductGetBySlug(t *testing.T) {
	svc := &stubProductsService{product: &products.ProductDTO{Slug: "brake-pads", Name: "Brake Pads"}}
	handler := ProductGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/brake-pads", nil)
	req = withURLParam(req, "slug", "brake-pads")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotSlug != "brake-pads" {
		t.Fatalf("expected slug forwarded, got %q", svc.gotSlug)
	}

	var envelope struct {
		Data products.ProductDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Brake Pads" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestProductGetNotFound(t *testing.T) {
	svc := &stubProductsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	handler := ProductGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil)
	req = withURLParam(req, "slug", "missing")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
