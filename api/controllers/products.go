package controllers

import (
	"net/http"

	"github.com/autocare/autocare-backend/api/responses"
	"github.com/autocare/autocare-backend/api/validators"
	"github.com/autocare/autocare-backend/internal/products"
	pkgerrors "github.com/autocare/autocare-backend/pkg/errors"
	"github.com/autocare/autocare-backend/pkg/logger"
	"github.com/autocare/autocare-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

// ProductsList serves the storefront catalog browse endpoint with filtering,
// sorting, and cursor pagination.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Browse(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductGet serves one product by its route slug.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		product, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func parseListInput(r *http.Request) (*products.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}

	minPrice, err := validators.ParseOptionalQueryInt(r, "minPrice", 0, 10_000_000)
	if err != nil {
		return nil, err
	}
	maxPrice, err := validators.ParseOptionalQueryInt(r, "maxPrice", 0, 10_000_000)
	if err != nil {
		return nil, err
	}
	year, err := validators.ParseOptionalQueryInt(r, "year", 1950, 2100)
	if err != nil {
		return nil, err
	}

	sort := validators.QueryString(r, "sort")
	switch sort {
	case "", products.SortNewest:
		sort = products.SortNewest
	case products.SortPriceAsc, products.SortPriceDesc, products.SortName:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort order").WithDetails(map[string]any{"field": "sort"})
	}

	cursor := validators.QueryString(r, "cursor")
	if _, err := pagination.ParseCursor(cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed cursor").WithDetails(map[string]any{"field": "cursor"})
	}

	return &products.ListInput{
		Filters: products.ListFilters{
			Query:    validators.SanitizeString(r.URL.Query().Get("q"), 200),
			Category: validators.QueryString(r, "category"),
			Brand:    validators.QueryString(r, "brand"),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			InStock:  validators.QueryBool(r, "inStock"),
			CarBrand: validators.QueryString(r, "carBrand"),
			CarModel: validators.QueryString(r, "carModel"),
			Year:     year,
		},
		Sort: sort,
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: cursor,
		},
	}, nil
}
