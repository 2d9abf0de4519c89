package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
)

const (
	DefaultFeaturedLimit = 4
	DefaultOffersLimit   = 3
	AllCategories        = "all"
)

// Source is the product and offer collection. ProductByID returns nil and no error for an unknown id.
// ProductsByCategory with an empty category returns every product.
type Source interface {
	FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	ActiveOffers(ctx context.Context, today string, limit int) ([]models.Offer, error)
}

// Cache fronts ProductByID. Get returns nil and no error on a miss.
type Cache interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, products ...models.Product) error
}

type Filters struct {
	SearchTerm     string   `form:"q"`
	Category       string   `form:"category"`
	Color          string   `form:"color"`
	MinPrice       *float64 `form:"minPrice"`
	MaxPrice       *float64 `form:"maxPrice"`
	DiscountedOnly bool     `form:"discounted"`
}

type Home struct {
	Featured []models.Product `json:"featured"`
	Offers   []models.Offer   `json:"offers"`
}

type Service struct {
	source Source
	cache  Cache
	logger *zap.Logger
	today  func() string
}

// NewService builds the catalog reader. cache may be nil.
func NewService(source Source, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		logger: global.LoggerOrNop(logger),
		today:  func() string { return time.Now().Format(time.DateOnly) },
	}
}

func (s *Service) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	products, err := s.source.FeaturedProducts(ctx, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to load featured products", err)
	}
	if len(products) > limit {
		products = products[:limit]
	}
	s.warm(ctx, products)
	return nonNil(products), nil
}

// GetProductByID reads through the cache. Cache failures fall back to the source.
func (s *Service) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := s.source.ProductByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to load product", err).With("product_id", id)
	}
	if product != nil {
		s.warm(ctx, []models.Product{*product})
	}
	return product, nil
}

// SearchProducts narrows by category at the source, then applies the remaining filters in memory
func (s *Service) SearchProducts(ctx context.Context, filters Filters) ([]models.Product, error) {
	category := strings.TrimSpace(filters.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}

	products, err := s.source.ProductsByCategory(ctx, category)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to search products", err)
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if filters.matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f Filters) matches(p models.Product) bool {
	if f.DiscountedOnly && !p.HasDiscount() {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := pricing.Round2(pricing.EffectivePrice(p))
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}
	if f.Color != "" && !strings.EqualFold(strings.TrimSpace(f.Color), p.Color) {
		return false
	}
	return p.MatchesText(f.SearchTerm)
}

// GetActiveOffers returns active offers still valid today, soonest expiry first
func (s *Service) GetActiveOffers(ctx context.Context, limit int) ([]models.Offer, error) {
	if limit <= 0 {
		limit = DefaultOffersLimit
	}
	today := s.today()

	offers, err := s.source.ActiveOffers(ctx, today, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to load offers", err)
	}

	out := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if o.IsActive && o.IsValidOn(today) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ValidUntil < out[j].ValidUntil })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Home loads the landing page data concurrently; either failure fails the whole page
func (s *Service) Home(ctx context.Context) (*Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		featured, err := s.GetFeaturedProducts(gctx, DefaultFeaturedLimit)
		home.Featured = featured
		return err
	})
	g.Go(func() error {
		offers, err := s.GetActiveOffers(gctx, DefaultOffersLimit)
		home.Offers = offers
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &home, nil
}

func (s *Service) warm(ctx context.Context, products []models.Product) {
	if s.cache == nil || len(products) == 0 {
		return
	}
	if err := s.cache.Set(ctx, products...); err != nil {
		s.logger.Warn("product cache write failed", zap.Int("products", len(products)), zap.Error(err))
	}
}

func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
