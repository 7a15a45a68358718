package worker

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// Catalog is the product/user data the synthetic tasks read.
type Catalog interface {
	ProductNames(ctx context.Context, limit int) ([]string, error)
	// TopPrices returns prices in descending order.
	TopPrices(ctx context.Context, limit int) ([]float64, error)
	ProductIDs(ctx context.Context, limit int) ([]int64, error)
	UserIDs(ctx context.Context, limit int) ([]int64, error)
}

type Product struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	Price float64 `db:"price"`
}

// MemoryCatalog serves the catalog from memory.
type MemoryCatalog struct {
	Products []Product
	Users    []int64
}

// RandomCatalog generates a catalog of the given size.
func RandomCatalog(products, users int, rng *rand.Rand) *MemoryCatalog {
	c := &MemoryCatalog{
		Products: make([]Product, products),
		Users:    make([]int64, users),
	}
	for i := range c.Products {
		c.Products[i] = Product{
			ID:    int64(i + 1),
			Name:  fmt.Sprintf("product-%d", i+1),
			Price: float64(rng.Intn(100000)) / 100,
		}
	}
	for i := range c.Users {
		c.Users[i] = int64(i + 1)
	}
	return c
}

func clip(n, limit int) int {
	if n < limit {
		return n
	}
	return limit
}

func (c *MemoryCatalog) ProductNames(_ context.Context, limit int) ([]string, error) {
	out := make([]string, clip(len(c.Products), limit))
	for i := range out {
		out[i] = c.Products[i].Name
	}
	return out, nil
}

func (c *MemoryCatalog) TopPrices(_ context.Context, limit int) ([]float64, error) {
	prices := make([]float64, len(c.Products))
	for i, p := range c.Products {
		prices[i] = p.Price
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	return prices[:clip(len(prices), limit)], nil
}

func (c *MemoryCatalog) ProductIDs(_ context.Context, limit int) ([]int64, error) {
	out := make([]int64, clip(len(c.Products), limit))
	for i := range out {
		out[i] = c.Products[i].ID
	}
	return out, nil
}

func (c *MemoryCatalog) UserIDs(_ context.Context, limit int) ([]int64, error) {
	out := make([]int64, clip(len(c.Users), limit))
	copy(out, c.Users)
	return out, nil
}
