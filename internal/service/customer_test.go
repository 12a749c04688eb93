package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

func TestCustomerService_ListForwardsFilters(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(domain.Page[domain.Customer]{
			Count:   1,
			Results: []domain.Customer{{ID: 1, Name: "Rahim Uddin"}},
		})
	}))
	defer srv.Close()

	svc := NewCustomerService(api.New(srv.URL, nil, newTestLogger()), newTestLogger())
	page, err := svc.List(context.Background(), domain.ListQuery{
		Search:  "rahim",
		Status:  "active",
		Page:    2,
		Filters: map[string]string{"zone": "3"},
	})
	require.NoError(t, err)

	assert.Equal(t, "rahim", gotQuery["search"][0])
	assert.Equal(t, "active", gotQuery["status"][0])
	assert.Equal(t, "2", gotQuery["page"][0])
	assert.Equal(t, "3", gotQuery["zone"][0])
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Rahim Uddin", page.Results[0].Name)
}

func TestCustomerService_ActionSuffixPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		json.NewEncoder(w).Encode(domain.Customer{ID: 8})
	}))
	defer srv.Close()

	svc := NewCustomerService(api.New(srv.URL, nil, newTestLogger()), newTestLogger())
	ctx := context.Background()
	params := domain.CustomerParams{Name: "Karim", Phone: "01712000000", Address: "Uttara", Zone: 3, BillingType: "prepaid"}

	_, err := svc.Create(ctx, params)
	require.NoError(t, err)
	_, err = svc.Update(ctx, 8, params)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 8))

	assert.Equal(t, []string{
		"POST /customers/create/",
		"PATCH /customers/8/update/",
		"DELETE /customers/8/delete/",
	}, paths)
}

func TestCustomerService_GetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer srv.Close()

	svc := NewCustomerService(api.New(srv.URL, nil, newTestLogger()), newTestLogger())
	_, err := svc.Get(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestCustomerService_CreateValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"phone": ["customer with this phone already exists."]}`))
	}))
	defer srv.Close()

	svc := NewCustomerService(api.New(srv.URL, nil, newTestLogger()), newTestLogger())
	_, err := svc.Create(context.Background(), domain.CustomerParams{Name: "Karim", Phone: "01712000000"})
	require.Error(t, err)

	fields := domain.FieldErrors(err)
	require.NotNil(t, fields)
	assert.Equal(t, "customer with this phone already exists.", fields["phone"])
}
