// Package notify sends users the daily list of their tracked SKUs that are
// on promotion.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/lenta-assistant/internal/assistant"
	"github.com/Sternrassler/lenta-assistant/internal/storage"
	"github.com/Sternrassler/lenta-assistant/pkg/lenta"
	"github.com/Sternrassler/lenta-assistant/pkg/logging"
)

// DefaultMaxConcurrency bounds the number of stores fetched at once.
const DefaultMaxConcurrency = 4

// Repository lists what users track.
type Repository interface {
	StoreSkus(ctx context.Context) ([]storage.StoreSku, error)
	UserStoreSkus(ctx context.Context) ([]storage.UserStoreSku, error)
}

// SkuSource fetches several SKUs of a store at once.
type SkuSource interface {
	StoreSkusByCodes(ctx context.Context, storeID string, codes []string) ([]lenta.Sku, error)
}

// Sender delivers a text message to a user.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// Result summarizes one run.
type Result struct {
	Users        int
	Sent         int
	Failed       int
	SkippedUsers int
	FailedStores int
}

// Job collects the discounted SKUs of every user and notifies them.
type Job struct {
	repo           Repository
	skus           SkuSource
	sender         Sender
	maxConcurrency int
	logger         zerolog.Logger
}

// NewJob creates a job. maxConcurrency <= 0 uses DefaultMaxConcurrency.
func NewJob(repo Repository, skus SkuSource, sender Sender, maxConcurrency int) *Job {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Job{
		repo:           repo,
		skus:           skus,
		sender:         sender,
		maxConcurrency: maxConcurrency,
		logger:         logging.NewLogger("notify"),
	}
}

type userStore struct {
	userID  int64
	storeID string
}

// Run performs one notification round. A store whose SKUs cannot be fetched
// is skipped together with its users; a failed delivery does not stop the
// round. Run fails only when the tracked SKUs cannot be read or ctx ends.
func (j *Job) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	result, err := j.run(ctx)
	if err != nil {
		notifyRunsTotal.WithLabelValues("failed").Inc()
		j.logger.Error().Err(err).Msg("Discount notification run failed")
		return result, err
	}

	notifyRunsTotal.WithLabelValues("ok").Inc()
	j.logger.Info().
		Int("users", result.Users).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Int("skipped_users", result.SkippedUsers).
		Int("failed_stores", result.FailedStores).
		Dur("duration", time.Since(start)).
		Msg("Discount notification run finished")
	return result, nil
}

func (j *Job) run(ctx context.Context) (Result, error) {
	var result Result

	pairs, err := j.repo.StoreSkus(ctx)
	if err != nil {
		return result, fmt.Errorf("list store skus: %w", err)
	}

	skus, failedStores, err := j.fetch(ctx, pairs)
	if err != nil {
		return result, err
	}
	result.FailedStores = len(failedStores)

	triples, err := j.repo.UserStoreSkus(ctx)
	if err != nil {
		return result, fmt.Errorf("list user store skus: %w", err)
	}

	order, tracked := group(triples)
	result.Users = len(order)

	for _, us := range order {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if failedStores[us.storeID] {
			result.SkippedUsers++
			continue
		}

		var discounted []lenta.Sku
		for _, code := range tracked[us] {
			sku, ok := skus[us.storeID][code]
			if ok && sku.HasPromotion() {
				discounted = append(discounted, sku)
			}
		}

		if err := j.sender.Send(ctx, us.userID, assistant.DiscountMessage(discounted)); err != nil {
			result.Failed++
			notifyMessagesTotal.WithLabelValues("failed").Inc()
			j.logger.Error().Err(err).Int64("user_id", us.userID).Msg("Failed to send discount notification")
			continue
		}

		result.Sent++
		notifyMessagesTotal.WithLabelValues("sent").Inc()
	}

	return result, nil
}

// fetch loads the tracked SKUs of every store, indexed by store and code.
func (j *Job) fetch(ctx context.Context, pairs []storage.StoreSku) (map[string]map[string]lenta.Sku, map[string]bool, error) {
	var stores []string
	codes := make(map[string][]string)
	for _, p := range pairs {
		if _, ok := codes[p.StoreID]; !ok {
			stores = append(stores, p.StoreID)
		}
		codes[p.StoreID] = append(codes[p.StoreID], p.SkuID)
	}

	var mu sync.Mutex
	skus := make(map[string]map[string]lenta.Sku, len(stores))
	failed := make(map[string]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.maxConcurrency)

	for _, storeID := range stores {
		g.Go(func() error {
			fetched, err := j.skus.StoreSkusByCodes(gctx, storeID, codes[storeID])

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failed[storeID] = true
				notifyStoreFailuresTotal.Inc()
				j.logger.Warn().Err(err).Str("store_id", storeID).Msg("Failed to fetch store SKUs")
				return nil
			}

			byCode := make(map[string]lenta.Sku, len(fetched))
			for _, sku := range fetched {
				byCode[sku.Code] = sku
			}
			skus[storeID] = byCode
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	return skus, failed, nil
}

// group collects the tracked codes per (user, store) in first-seen order.
func group(triples []storage.UserStoreSku) ([]userStore, map[userStore][]string) {
	var order []userStore
	tracked := make(map[userStore][]string)
	for _, t := range triples {
		key := userStore{userID: t.UserID, storeID: t.StoreID}
		if _, ok := tracked[key]; !ok {
			order = append(order, key)
		}
		tracked[key] = append(tracked[key], t.SkuID)
	}
	return order, tracked
}
