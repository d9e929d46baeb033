package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gmarket/backend/internal/config"
	"github.com/gmarket/backend/pkg/clients"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

var ErrRateUnknown = errors.New("no rate for currency")

// Response is the rate provider's payload: USD price per unit of each ticker.
type Response struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Service keeps an in-memory USD exchange-rate cache refreshed from the
// configured provider. Deposit creation reads the cache and never blocks on
// the provider.
type Service struct {
	url            string
	client         clients.HTTPClientI
	updateInterval time.Duration

	mu    sync.RWMutex
	rates map[string]float64
	asOf  time.Time
}

func New(cfg *config.Config, client clients.HTTPClientI) *Service {
	return &Service{
		url:            cfg.RatesAddress,
		client:         client,
		updateInterval: cfg.RatesInterval,
		rates:          make(map[string]float64),
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Rates service started")
	s.refresh(ctx)
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping rates service")
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	url := s.url + "/api/rates"
	var statusCode int
	var respBody []byte
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return
		default:
			statusCode, respBody, _, err = s.client.Get(url, nil)
			if err != nil || statusCode != http.StatusOK {
				if attempt < maxRetries {
					time.Sleep(retryInterval * time.Duration(attempt))
					continue
				}
				zap.L().Error("failed to fetch exchange rates",
					zap.Int("status", statusCode), zap.Int("attempts", attempt), zap.Error(err))
				return
			}
			if err := s.apply(respBody); err != nil {
				zap.L().Error("failed to parse exchange rates", zap.Error(err))
			}
			return
		}
	}
}

func (s *Service) apply(respBody []byte) error {
	var response Response
	if err := json.Unmarshal(respBody, &response); err != nil {
		return fmt.Errorf("failed to parse response body: %w", err)
	}
	if len(response.Rates) == 0 {
		return errors.New("empty rates response")
	}

	fresh := make(map[string]float64, len(response.Rates))
	for currency, rate := range response.Rates {
		if rate.IsPositive() {
			fresh[currency] = rate.InexactFloat64()
		}
	}

	s.mu.Lock()
	s.rates = fresh
	s.asOf = time.Now()
	s.mu.Unlock()

	zap.L().Info("exchange rates refreshed", zap.Int("currencies", len(fresh)))
	return nil
}

// Rate returns the cached USD rate for a currency.
func (s *Service) Rate(currency string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rate, ok := s.rates[currency]
	if !ok {
		return 0, ErrRateUnknown
	}
	return rate, nil
}

// AsOf reports when the cache was last refreshed.
func (s *Service) AsOf() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.asOf
}
