// Command loadgen drives a running catalog and order service over HTTP: it
// creates one product, fires concurrent orders against it, waits out the
// completion delay and checks every order settled with the right total.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/handler"
)

func main() {
	catalogURL := flag.String("catalog", "http://localhost:8000", "catalog service base URL")
	ordersURL := flag.String("orders", "http://localhost:8001", "order service base URL")
	totalRequests := flag.Int("n", 50, "number of orders to place")
	quantity := flag.Int("quantity", 2, "quantity per order")
	price := flag.String("price", "999.99", "unit price of the test product")
	wait := flag.Duration("wait", 7*time.Second, "how long to wait for completions")
	flag.Parse()

	ctx := context.Background()
	client := &http.Client{Timeout: 10 * time.Second}

	unitPrice, err := decimal.NewFromString(*price)
	if err != nil {
		log.Fatalf("invalid price %q: %v", *price, err)
	}

	var product handler.ProductResponse
	status, err := call(ctx, client, http.MethodPost, *catalogURL+"/products", map[string]any{
		"name":     "loadgen-laptop",
		"price":    unitPrice,
		"quantity": *totalRequests * *quantity,
	}, &product)
	if err != nil || status != http.StatusCreated {
		log.Fatalf("failed to create product: status=%d err=%v", status, err)
	}
	log.Printf("created product %s", product.ID)

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32
	var mu sync.Mutex
	orderIDs := make([]string, 0, *totalRequests)

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var order handler.OrderResponse
			status, err := call(ctx, client, http.MethodPost, *ordersURL+"/orders", map[string]any{
				"id":       product.ID,
				"quantity": *quantity,
			}, &order)
			if err != nil || status != http.StatusCreated || order.Status != "pending" {
				failCount.Add(1)
				return
			}
			successCount.Add(1)
			mu.Lock()
			orderIDs = append(orderIDs, order.ID)
			mu.Unlock()
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	log.Printf("waiting %v for completions", *wait)
	time.Sleep(*wait)

	expected := unitPrice.Mul(decimal.NewFromInt(int64(*quantity)))
	counts := map[string]int{}
	wrongTotals := 0
	for _, id := range orderIDs {
		var order handler.OrderResponse
		if _, err := call(ctx, client, http.MethodGet, *ordersURL+"/orders/"+id, nil, &order); err != nil {
			counts["unreadable"]++
			continue
		}
		counts[order.Status]++
		if !order.Total.Equal(expected) {
			wrongTotals++
		}
	}

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== LOAD TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Accepted:         %d\n", success)
	fmt.Printf("Rejected:         %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Printf("Completed:        %d\n", counts["completed"])
	fmt.Printf("Failed:           %d\n", counts["failed"])
	fmt.Printf("Still Pending:    %d\n", counts["pending"])
	fmt.Println("========================================")

	ok := true
	if fail == 0 {
		fmt.Printf("PASS: all %d orders accepted\n", success)
	} else {
		fmt.Printf("FAIL: %d orders rejected\n", fail)
		ok = false
	}
	if counts["completed"] == len(orderIDs) {
		fmt.Println("PASS: every accepted order completed")
	} else {
		fmt.Printf("FAIL: expected %d completed, got %d\n", len(orderIDs), counts["completed"])
		ok = false
	}
	if wrongTotals == 0 {
		fmt.Printf("PASS: every total is %v\n", expected)
	} else {
		fmt.Printf("FAIL: %d orders with a total other than %v\n", wrongTotals, expected)
		ok = false
	}

	if _, err := call(ctx, client, http.MethodDelete, *catalogURL+"/products/"+product.ID, nil, nil); err != nil {
		log.Printf("cleanup: %v", err)
	}
	if !ok {
		os.Exit(1)
	}
}

// call sends body as JSON and decodes a 2xx response into out.
func call(ctx context.Context, client *http.Client, method, url string, body, out any) (int, error) {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &payload)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}
