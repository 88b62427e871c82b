package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/MikeMC777/fulfillment-ecom/internal/product"
	"github.com/MikeMC777/fulfillment-ecom/internal/service"
	"github.com/MikeMC777/fulfillment-ecom/internal/store/memory"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

// defaultSeed is loaded by STORE_DRIVER=memory when MEMORY_SEED is empty.
//
//go:embed seed.json
var defaultSeed []byte

// seed is the catalog, address book and role table of a memory-backed
// order service, which has no user service or catalog behind it.
type seed struct {
	Roles     map[int64]string  `json:"roles"`
	Products  []product.Product `json:"products"`
	Addresses []user.Address    `json:"addresses"`
}

func loadSeed(path string) (*seed, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		raw = b
	}
	var s seed
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for _, p := range s.Products {
		if p.Name == "" || !p.Price.IsPositive() || p.StockQuantity < 0 {
			return nil, fmt.Errorf("seed product %d: name, positive price and stock >= 0 required", p.ID)
		}
	}
	return &s, nil
}

// memoryBackend builds a seeded memory store and the permissions that go
// with it.
func memoryBackend(path string) (*memory.Store, service.StaticPermissions, error) {
	s, err := loadSeed(path)
	if err != nil {
		return nil, service.StaticPermissions{}, err
	}
	st := memory.New()
	for _, p := range s.Products {
		st.PutProduct(p)
	}
	for _, a := range s.Addresses {
		st.PutAddress(a)
	}
	return st, service.StaticPermissions{Roles: s.Roles}, nil
}
