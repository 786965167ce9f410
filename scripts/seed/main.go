package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/smart-inventory/smart-inventory/internal/app"
	"github.com/smart-inventory/smart-inventory/internal/inventory"
	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	stores, err := app.OpenStores(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer stores.Close()

	n, err := stores.Suppliers.Count(ctx)
	if err != nil {
		log.Fatalf("count suppliers: %v", err)
	}
	if n > 0 {
		fmt.Printf("→ %d suppliers present, skipping seed\n", n)
		return
	}

	fmt.Println("→ Seeding suppliers...")
	ids, err := seedSuppliers(ctx, stores.Suppliers)
	if err != nil {
		log.Fatalf("seed suppliers: %v", err)
	}

	fmt.Println("→ Seeding products...")
	if err := seedProducts(ctx, stores.Products, ids); err != nil {
		log.Fatalf("seed products: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedSuppliers(ctx context.Context, repo suppliers.Repository) (map[string]suppliers.Supplier, error) {
	rows := []suppliers.Supplier{
		{Name: "Rina Wijaya", Mobile: "+62 812 1000 2000", Email: "orders@stationery.example", Company: "Sinar Stationery"},
		{Name: "Budi Santoso", Mobile: "+62 813 3000 4000", Email: "sales@paperworks.example", Company: "Paperworks Supply"},
		{Name: "Dewi Lestari", Mobile: "+62 811 5000 6000", Email: "", Company: "Local Crafts"},
	}
	out := make(map[string]suppliers.Supplier, len(rows))
	for _, s := range rows {
		created, err := repo.Create(ctx, s)
		if err != nil {
			return nil, err
		}
		out[s.Company] = created
	}
	return out, nil
}

func seedProducts(ctx context.Context, repo inventory.Repository, bySupplier map[string]suppliers.Supplier) error {
	rows := []struct {
		name     string
		stock    int
		minStock int
		price    string
		company  string
	}{
		{"Ballpoint Pen Blue", 240, 50, "0.45", "Sinar Stationery"},
		{"Ballpoint Pen Red", 40, 50, "0.45", "Sinar Stationery"},
		{"A5 Notebook", 80, 30, "2.10", "Paperworks Supply"},
		{"A4 Copy Paper (ream)", 12, 20, "4.75", "Paperworks Supply"},
		{"Handmade Bookmark", 15, 15, "1.20", "Local Crafts"},
	}
	for _, r := range rows {
		sup := bySupplier[r.company]
		_, err := repo.Save(ctx, inventory.Product{
			Name:     r.name,
			Stock:    r.stock,
			MinStock: r.minStock,
			Price:    decimal.RequireFromString(r.price),
			Supplier: &sup,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
	}
	return nil
}
