package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory-service/internal/adapter/storage"
)

// loadcheck hammers one fresh product id with concurrent first writes and
// verifies the store ends up with a single row holding one of the written values.
func main() {
	baseURL := flag.String("url", "http://localhost:3000/api/v1/inventories", "inventory endpoint")
	apiKey := flag.String("key", "", "value for the x-api-key header")
	dsn := flag.String("dsn", "root:root@tcp(localhost:3306)/inventory", "MySQL DSN used to count rows")
	totalRequests := flag.Int("requests", 50, "concurrent PUT requests")
	flag.Parse()

	productID := int64(uuid.New().ID())
	client := &http.Client{Timeout: 10 * time.Second}

	var successCount atomic.Int32
	var failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(quantity int) {
			defer wg.Done()

			if err := put(client, *baseURL, *apiKey, productID, quantity); err != nil {
				log.Printf("put %d: %v", quantity, err)
				failCount.Add(1)
				return
			}
			successCount.Add(1)
		}(i + 1)
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== LOAD CHECK RESULTS ==========")
	fmt.Printf("Product ID:       %d\n", productID)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("========================================")

	db, err := storage.OpenMySQL(*dsn, storage.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rows, quantity int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(quantity), -1)
		FROM inventories WHERE product_id = ?`, productID,
	).Scan(&rows, &quantity)
	if err != nil {
		log.Fatalf("failed to count rows: %v", err)
	}

	if rows == 1 && quantity >= 1 && quantity <= *totalRequests {
		fmt.Printf("PASS: exactly one row, quantity %d\n", quantity)
	} else {
		fmt.Printf("FAIL: expected one row, got %d (quantity %d)\n", rows, quantity)
	}
}

func put(client *http.Client, baseURL, apiKey string, productID int64, quantity int) error {
	body, _ := json.Marshal(map[string]int{"quantity": quantity})

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/%d", baseURL, productID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
