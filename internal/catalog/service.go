package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// homePageSize is large enough that every category shows up on the home page.
const homePageSize = 200

type ProductSource interface {
	ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	TopProducts(ctx context.Context) ([]domain.Product, error)
	FilterOptions(ctx context.Context) (*domain.FilterOptions, error)
}

type ProductAdmin interface {
	CreateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, token, id string) error
}

// Backend is what the catalog needs from the REST backend.
type Backend interface {
	ProductSource
	ProductAdmin
}

type Carousel struct {
	Category string           `json:"category"`
	Title    string           `json:"title"`
	Products []domain.Product `json:"products"`
}

type HomePage struct {
	Carousels []Carousel            `json:"carousels"`
	TopRated  []domain.Product      `json:"topRated"`
	Filters   *domain.FilterOptions `json:"filters"`
}

type Service struct {
	backend Backend
	cache   cache.ProductCache
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(backend Backend, c cache.ProductCache) *Service {
	if c == nil {
		c = cache.NopCache{}
	}
	return &Service{backend: backend, cache: c}
}

func (s *Service) List(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	return readThrough(ctx, s, "products:"+q.CacheKey(), func(ctx context.Context) (*domain.ProductPage, error) {
		return s.backend.ListProducts(ctx, q)
	})
}

func (s *Service) Product(ctx context.Context, id string) (*domain.Product, error) {
	return readThrough(ctx, s, "product:"+id, func(ctx context.Context) (*domain.Product, error) {
		return s.backend.GetProduct(ctx, id)
	})
}

func (s *Service) TopRated(ctx context.Context) ([]domain.Product, error) {
	return readThrough(ctx, s, "top", s.backend.TopProducts)
}

func (s *Service) Filters(ctx context.Context) (*domain.FilterOptions, error) {
	return readThrough(ctx, s, "filters", s.backend.FilterOptions)
}

// Home loads the home page in parallel. refine narrows the product set the
// carousels are built from.
func (s *Service) Home(ctx context.Context, refine domain.ProductQuery) (*HomePage, error) {
	var (
		page    *domain.ProductPage
		top     []domain.Product
		filters *domain.FilterOptions
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.List(gctx, domain.ProductQuery{PageSize: homePageSize})
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.TopRated(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		filters, err = s.Filters(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load home page: %w", err)
	}

	return &HomePage{
		Carousels: Carousels(Refine(page.Products, refine)),
		TopRated:  top,
		Filters:   filters,
	}, nil
}

// Carousels groups products by category: known categories first in their
// home page order, then any others alphabetically. Empty groups are omitted.
func Carousels(products []domain.Product) []Carousel {
	byCategory := make(map[string][]domain.Product)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	out := make([]Carousel, 0, len(byCategory))
	for _, cat := range homeCategories {
		if ps, ok := byCategory[cat]; ok {
			out = append(out, Carousel{Category: cat, Title: DisplayName(cat), Products: ps})
			delete(byCategory, cat)
		}
	}

	rest := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		rest = append(rest, cat)
	}
	sort.Strings(rest)
	for _, cat := range rest {
		out = append(out, Carousel{Category: cat, Title: DisplayName(cat), Products: byCategory[cat]})
	}
	return out
}

func (s *Service) CreateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error) {
	created, err := s.backend.CreateProduct(ctx, token, p)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, token, id string, p domain.Product) (*domain.Product, error) {
	updated, err := s.backend.UpdateProduct(ctx, token, id, p)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, token, id string) error {
	if err := s.backend.DeleteProduct(ctx, token, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Purge(ctx); err != nil {
		slog.Error("catalog cache purge error", "error", err)
	}
}

// readThrough serves key from the cache, loading it once per key on a miss.
func readThrough[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		var cached T
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "catalog cache get error", "key", key, "error", err)
		}

		fresh, err := load(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, key, fresh); err != nil {
				slog.Error("catalog cache set error", "key", key, "error", err)
			}
		}()

		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
