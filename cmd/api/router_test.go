package main

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mweb/storefront-api/internal/config"
)

// Route registration happens at startup, so a conflicting path (such as a
// static segment next to a parameter at the same depth) would panic before
// the server ever listens. Building the router here catches that in CI.
func TestNewRouterRegistersAllRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var router *gin.Engine
	require.NotPanics(t, func() {
		router = newRouter(&config.Config{}, nil, nil, nil, nil, nil, nil, nil)
	})

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /healthz",
		"GET /readyz",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"GET /api/v1/cart",
		"POST /api/v1/cart/items",
		"POST /api/v1/orders",
		"GET /api/v1/orders/:id",
		"POST /api/v1/admin/products",
		"POST /api/v1/admin/inventory",
		"GET /api/v1/admin/inventory",
		"GET /api/v1/admin/inventory/:productID",
		"PUT /api/v1/admin/inventory/:productID/stock",
		"POST /api/v1/admin/coupons",
		"GET /api/v1/admin/orders/:id",
		"PUT /api/v1/admin/orders/:id/status",
	}
	for _, want := range expected {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
