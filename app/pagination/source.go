package pagination

import "context"

// SliceSource serves an already ordered slice.
type SliceSource[T any] []T

func (s SliceSource[T]) Count(context.Context) (int, error) {
	return len(s), nil
}

func (s SliceSource[T]) Fetch(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	return s[offset:end], nil
}

// LazySource defers loading until the first Count or Fetch and then serves the
// loaded slice. It is not safe for concurrent use.
type LazySource[T any] struct {
	load   func(ctx context.Context) ([]T, error)
	items  SliceSource[T]
	loaded bool
}

func NewLazySource[T any](load func(ctx context.Context) ([]T, error)) *LazySource[T] {
	return &LazySource[T]{load: load}
}

func (s *LazySource[T]) ensure(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.items = items
	s.loaded = true
	return nil
}

func (s *LazySource[T]) Count(ctx context.Context) (int, error) {
	if err := s.ensure(ctx); err != nil {
		return 0, err
	}
	return s.items.Count(ctx)
}

func (s *LazySource[T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.items.Fetch(ctx, offset, limit)
}
