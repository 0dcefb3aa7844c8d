// Command loadgen exercises a running deployment end to end: it registers a
// user against the identity service, logs in, then drives concurrent credits
// and debits through the ledger write endpoint and reports the final balance.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const idempotencyKeyHeader = "x-idempotency-key"

type options struct {
	identityURL string
	ledgerURL   string
	workers     int
	postings    int
	maxAmount   int64
	debitRatio  float64
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type postingRequest struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

type balanceResponse struct {
	Amount int64 `json:"amount"`
}

type counters struct {
	ok           atomic.Int64
	insufficient atomic.Int64
	failed       atomic.Int64
}

func main() {
	opts := options{}
	flag.StringVar(&opts.identityURL, "identity-url", "http://localhost:8081", "base URL of the identity service")
	flag.StringVar(&opts.ledgerURL, "ledger-url", "http://localhost:8080", "base URL of the ledger service")
	flag.IntVar(&opts.workers, "workers", 16, "number of concurrent workers")
	flag.IntVar(&opts.postings, "postings", 500, "total number of postings to submit")
	flag.Int64Var(&opts.maxAmount, "max-amount", 10_000, "maximum amount per posting in minor units")
	flag.Float64Var(&opts.debitRatio, "debit-ratio", 0.4, "fraction of postings submitted as debits")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	client := &http.Client{Timeout: 30 * time.Second}

	email := fmt.Sprintf("loadgen-%s@example.com", uuid.New().String()[:8])
	password := uuid.New().String()

	if err := register(client, opts.identityURL, email, password); err != nil {
		log.Error("Registration failed", "error", err)
		os.Exit(1)
	}
	token, err := login(client, opts.identityURL, email, password)
	if err != nil {
		log.Error("Login failed", "error", err)
		os.Exit(1)
	}
	log.Info("Registered and logged in", "email", email)

	pool, err := ants.NewPool(opts.workers)
	if err != nil {
		log.Error("Failed to create worker pool", "error", err)
		os.Exit(1)
	}
	defer pool.Release()

	var stats counters
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < opts.postings; i++ {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			req := postingRequest{Type: "CREDIT", Amount: 1 + rand.Int63n(opts.maxAmount)}
			if rand.Float64() < opts.debitRatio {
				req.Type = "DEBIT"
			}

			status, err := post(client, opts.ledgerURL, token, req)
			switch {
			case err != nil:
				stats.failed.Add(1)
				log.Warn("Posting request failed", "error", err)
			case status == http.StatusOK:
				stats.ok.Add(1)
			case status == http.StatusBadRequest:
				// Debits against a thin balance are expected to bounce
				stats.insufficient.Add(1)
			default:
				stats.failed.Add(1)
				log.Warn("Posting rejected", "status", status)
			}
		})
		if submitErr != nil {
			wg.Done()
			stats.failed.Add(1)
			log.Warn("Failed to submit posting to pool", "error", submitErr)
		}
	}

	wg.Wait()
	elapsed := time.Since(start)

	balance, err := fetchBalance(client, opts.ledgerURL, token)
	if err != nil {
		log.Error("Failed to fetch final balance", "error", err)
		os.Exit(1)
	}

	log.Info("Load run complete",
		"postings", opts.postings,
		"accepted", stats.ok.Load(),
		"insufficient_balance", stats.insufficient.Load(),
		"failed", stats.failed.Load(),
		"elapsed", elapsed.String(),
		"rate_per_sec", fmt.Sprintf("%.1f", float64(opts.postings)/elapsed.Seconds()),
		"final_balance", balance.Amount,
	)

	if stats.failed.Load() > 0 {
		os.Exit(1)
	}
}

func register(client *http.Client, baseURL, email, password string) error {
	body, _ := json.Marshal(registerRequest{
		Email:     email,
		Password:  password,
		FirstName: "Load",
		LastName:  "Generator",
	})
	resp, err := client.Post(baseURL+"/api/v1/users", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func login(client *http.Client, baseURL, email, password string) (string, error) {
	body, _ := json.Marshal(loginRequest{Email: email, Password: password})
	resp, err := client.Post(baseURL+"/api/v1/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.AccessToken == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return decoded.AccessToken, nil
}

func post(client *http.Client, baseURL, token string, posting postingRequest) (int, error) {
	body, err := json.Marshal(posting)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(idempotencyKeyHeader, uuid.New().String())

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func fetchBalance(client *http.Client, baseURL, token string) (*balanceResponse, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/balance", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var decoded balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}
