package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/verdana/verdana-backend/config"
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports a product catalog from an XLSX export. Expected columns:
// name, description, brand, price, category, tags (semicolon separated),
// stock, sustainability_score, image_url. The first row is the header.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d (skipped %d invalid rows)\n", len(products), skipped)
	if len(products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}
	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 8 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		brand := strings.TrimSpace(row[2])
		priceStr := strings.TrimSpace(row[3])
		category := strings.TrimSpace(row[4])
		tagsStr := strings.TrimSpace(row[5])
		stockStr := strings.TrimSpace(row[6])
		scoreStr := strings.TrimSpace(row[7])

		imageURL := ""
		if len(row) > 8 {
			imageURL = strings.TrimSpace(row[8])
		}

		if name == "" || priceStr == "" || category == "" {
			skipped++
			continue
		}
		if !validCategory(category) {
			skipped++
			continue
		}

		// Duplicate rows come up in supplier exports; name+brand is
		// unique enough for catalog seeding.
		dedupe := name + "|" + brand
		if seen[dedupe] {
			skipped++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}
		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			skipped++
			continue
		}
		score, err := strconv.Atoi(scoreStr)
		if err != nil || score < 0 || score > 100 {
			skipped++
			continue
		}

		var tags []string
		if tagsStr != "" {
			for _, t := range strings.Split(tagsStr, ";") {
				if trimmed := strings.TrimSpace(t); trimmed != "" {
					tags = append(tags, trimmed)
				}
			}
		}

		seen[dedupe] = true
		products = append(products, model.Product{
			Name:                name,
			Description:         description,
			Brand:               brand,
			Price:               price,
			Category:            model.ProductCategory(category),
			Tags:                pq.StringArray(tags),
			Stock:               stock,
			SustainabilityScore: score,
			ImageURL:            imageURL,
		})
	}

	return products, skipped, nil
}

func validCategory(category string) bool {
	switch model.ProductCategory(category) {
	case model.CategorySkincare, model.CategoryHaircare, model.CategoryBodycare,
		model.CategoryMakeup, model.CategoryFragrance:
		return true
	}
	return false
}
