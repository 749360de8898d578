package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"affiliate-locator/internal/config"
	"affiliate-locator/internal/dataset"
	"affiliate-locator/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/afero"
)

func main() {
	file := flag.String("file", "", "Path to the affiliates file to import")
	truncate := flag.Bool("truncate", false, "Remove existing affiliates before importing")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting import from file: %s\n", *file)

	content, err := afero.ReadFile(afero.NewOsFs(), *file)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	result := dataset.Parse(string(content))
	for _, w := range result.Warnings {
		fmt.Printf("Skipping %v\n", w)
	}

	fmt.Printf("Parsed %d records (%d skipped)\n", len(result.Affiliates), len(result.Warnings))

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to DB
	conn, err := pgx.Connect(ctx, cfg.DBSource)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	// Ensure table exists
	if _, err := conn.Exec(ctx, repository.Schema); err != nil {
		fmt.Printf("Error creating table: %v\n", err)
		os.Exit(1)
	}

	if *truncate {
		if _, err := conn.Exec(ctx, "TRUNCATE affiliates RESTART IDENTITY"); err != nil {
			fmt.Printf("Error truncating table: %v\n", err)
			os.Exit(1)
		}
	}

	// Insert records
	inserted, err := repository.Import(ctx, conn, result.Affiliates)
	if err != nil {
		fmt.Printf("Error inserting records: %v\n", err)
		os.Exit(1)
	}

	// Verify data
	if err := verifyImport(ctx, conn, *truncate, inserted); err != nil {
		fmt.Printf("Error verifying import: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully imported %d records\n", inserted)
}

func verifyImport(ctx context.Context, conn *pgx.Conn, exact bool, inserted int64) error {
	var count int64
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM affiliates").Scan(&count); err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if count < inserted || (exact && count != inserted) {
		return fmt.Errorf("record count mismatch: expected %d, got %d", inserted, count)
	}

	var name string
	err := conn.QueryRow(ctx, "SELECT name FROM affiliates ORDER BY id LIMIT 1").Scan(&name)
	if err != nil && inserted > 0 {
		return fmt.Errorf("failed to check first record: %w", err)
	}

	fmt.Printf("Table holds %d affiliates, first: %q\n", count, name)
	return nil
}
