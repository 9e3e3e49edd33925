package handlers

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	h := &Handler{}

	// Should not panic
	assert.NotPanics(t, func() {
		h.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}
