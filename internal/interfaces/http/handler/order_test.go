package handler

import (
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(api *testAPI, token string, productID uuid.UUID, qty int) int {
	return api.do(http.MethodPost, "/orders", token, map[string]any{
		"product_id": productID, "quantity": qty,
	}).Code
}

func listOrders(t *testing.T, api *testAPI, token string) []OrderViewResponse {
	t.Helper()
	w := api.do(http.MethodGet, "/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data []OrderViewResponse `json:"data"`
	}
	decode(t, w, &resp)
	return resp.Data
}

func TestOrderHandler_StockScenario(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup("seller1", "Seller")
	buyer := api.signup("buyer1", "Customer")
	product := api.createProduct(seller, "Widget", "2.00", 5)

	assert.Equal(t, http.StatusCreated, placeOrder(api, buyer, product.ID, 3))

	w := api.do(http.MethodPost, "/orders", buyer, map[string]any{"product_id": product.ID, "quantity": 3})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, errorCode(t, w))

	assert.Equal(t, http.StatusCreated, placeOrder(api, buyer, product.ID, 2))

	products := listProducts(t, api, "", "")
	require.Len(t, products, 1)
	assert.Equal(t, 0, products[0].Stock)
}

func TestOrderHandler_Place(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup("seller1", "Seller")
	buyer := api.signup("buyer1", "Customer")
	product := api.createProduct(seller, "Widget", "2.00", 10)

	t.Run("quantity defaults to one", func(t *testing.T) {
		w := api.do(http.MethodPost, "/orders", buyer, map[string]any{"product_id": product.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp struct {
			Data OrderResponse `json:"data"`
		}
		decode(t, w, &resp)
		assert.Equal(t, 1, resp.Data.Quantity)
		assert.Equal(t, product.ID, resp.Data.ProductID)
	})

	t.Run("seller cannot buy", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, placeOrder(api, seller, product.ID, 1))
	})

	t.Run("zero quantity", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, placeOrder(api, buyer, product.ID, 0))
	})

	t.Run("unknown product", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, placeOrder(api, buyer, uuid.New(), 1))
	})

	t.Run("bad product id", func(t *testing.T) {
		w := api.do(http.MethodPost, "/orders", buyer, map[string]any{"product_id": "abc"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
	})

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, placeOrder(api, "", product.ID, 1))
	})
}

func TestOrderHandler_ConcurrentBuyersNeverOversell(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup("seller1", "Seller")
	buyer := api.signup("buyer1", "Customer")
	const stock, callers = 4, 12
	product := api.createProduct(seller, "Scarce", "1.00", stock)

	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = placeOrder(api, buyer, product.ID, 1)
		}()
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusUnprocessableEntity:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, stock, created)
	assert.Equal(t, 0, listProducts(t, api, "", "")[0].Stock)
	assert.Len(t, listOrders(t, api, buyer), stock)
}

func TestOrderHandler_ListVisibility(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signupAdmin("admin")
	sellerA := api.signup("sellerA", "Seller")
	sellerB := api.signup("sellerB", "Seller")
	buyer1 := api.signup("buyer1", "Customer")
	buyer2 := api.signup("buyer2", "Customer")

	pa := api.createProduct(sellerA, "Apple", "1.25", 10)
	pb := api.createProduct(sellerB, "Bread", "3.00", 10)
	require.Equal(t, http.StatusCreated, placeOrder(api, buyer1, pa.ID, 2))
	require.Equal(t, http.StatusCreated, placeOrder(api, buyer2, pb.ID, 1))
	require.Equal(t, http.StatusCreated, placeOrder(api, buyer1, pb.ID, 4))

	assert.Len(t, listOrders(t, api, admin), 3)
	assert.Len(t, listOrders(t, api, buyer1), 2)
	assert.Len(t, listOrders(t, api, buyer2), 1)

	forA := listOrders(t, api, sellerA)
	require.Len(t, forA, 1)
	require.NotNil(t, forA[0].Total)
	assert.True(t, forA[0].Total.Equal(decimal.RequireFromString("2.50")))
	require.NotNil(t, forA[0].BuyerUsername)
	assert.Equal(t, "buyer1", *forA[0].BuyerUsername)

	newestFirst := listOrders(t, api, sellerB)
	require.Len(t, newestFirst, 2)
	assert.False(t, newestFirst[0].PlacedAt.Before(newestFirst[1].PlacedAt))

	t.Run("deleted product keeps the order", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/catalog/products/"+pa.ID.String(), sellerA, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		orders := listOrders(t, api, buyer1)
		require.Len(t, orders, 2)
		var dangling *OrderViewResponse
		for i := range orders {
			if orders[i].ProductID == pa.ID {
				dangling = &orders[i]
			}
		}
		require.NotNil(t, dangling)
		assert.Nil(t, dangling.ProductName)
		assert.Nil(t, dangling.Total)
		assert.Equal(t, 2, dangling.Quantity)
	})
}
