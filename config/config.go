package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	ListenAddr string

	// Auction scheduling
	Epoch         time.Time     // auction scheduling origin
	AuctionLength time.Duration // full auction window, bidding plus cooldown gap
	BiddingLength time.Duration // bidding sub-window, must not exceed AuctionLength

	// Bid increment rules
	MinOpeningBid int64
	StepIncrement int64

	// Credit currency accepted by the deposit notification endpoint
	CreditSymbol string

	// SystemAccount is the ledger account deposits must be addressed to
	SystemAccount string

	// Admin accounts allowed to enqueue items and record price ticks
	AdminAccounts []string

	// External collaborator endpoints
	LedgerURL  string // funds transfers (withdrawals)
	CustodyURL string // item transfers (settlement)

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Local development convenience; a missing .env file is fine
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  os.Getenv("LISTEN_ADDR"),

		// Auction defaults: ten-minute cycles with a one-minute cooldown gap
		AuctionLength: 600 * time.Second,
		BiddingLength: 540 * time.Second,

		MinOpeningBid: 1,
		StepIncrement: 1,

		CreditSymbol:  "CREDIT",
		SystemAccount: os.Getenv("SYSTEM_ACCOUNT"),

		LedgerURL:  os.Getenv("LEDGER_URL"),
		CustodyURL: os.Getenv("CUSTODY_URL"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if epoch := os.Getenv("AUCTION_EPOCH"); epoch != "" {
		parsed, err := time.Parse(time.RFC3339, epoch)
		if err != nil {
			return nil, fmt.Errorf("invalid AUCTION_EPOCH: %w", err)
		}
		config.Epoch = parsed.UTC()
	}
	if length := os.Getenv("AUCTION_LENGTH_SECONDS"); length != "" {
		if parsed, err := strconv.ParseInt(length, 10, 64); err == nil && parsed > 0 {
			config.AuctionLength = time.Duration(parsed) * time.Second
		}
	}
	if length := os.Getenv("BIDDING_LENGTH_SECONDS"); length != "" {
		if parsed, err := strconv.ParseInt(length, 10, 64); err == nil && parsed > 0 {
			config.BiddingLength = time.Duration(parsed) * time.Second
		}
	}
	if bid := os.Getenv("MIN_OPENING_BID"); bid != "" {
		if parsed, err := strconv.ParseInt(bid, 10, 64); err == nil && parsed > 0 {
			config.MinOpeningBid = parsed
		}
	}
	if step := os.Getenv("STEP_INCREMENT"); step != "" {
		if parsed, err := strconv.ParseInt(step, 10, 64); err == nil && parsed > 0 {
			config.StepIncrement = parsed
		}
	}
	if symbol := os.Getenv("CREDIT_SYMBOL"); symbol != "" {
		config.CreditSymbol = symbol
	}

	// Parse admin account allow-list
	if admins := os.Getenv("ADMIN_ACCOUNTS"); admins != "" {
		for _, account := range strings.Split(admins, ",") {
			account = strings.TrimSpace(account)
			if account != "" {
				config.AdminAccounts = append(config.AdminAccounts, account)
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.BiddingLength > config.AuctionLength {
		return nil, fmt.Errorf("BIDDING_LENGTH_SECONDS must not exceed AUCTION_LENGTH_SECONDS")
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.SystemAccount == "" {
			return nil, fmt.Errorf("SYSTEM_ACCOUNT is required")
		}
	}

	return config, nil
}

// IsAdmin reports whether the account is on the configured allow-list.
func (c *Config) IsAdmin(accountID string) bool {
	for _, admin := range c.AdminAccounts {
		if admin == accountID {
			return true
		}
	}
	return false
}
