package repositories

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"blogsite/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB
type BadgerTagRepository struct {
	db *badger.DB
}

// NewBadgerTagRepository creates a new BadgerTagRepository
func NewBadgerTagRepository(db *badger.DB) *BadgerTagRepository {
	return &BadgerTagRepository{db: db}
}

// Create stores a tag and indexes its slug
func (r *BadgerTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		slugKey := tagSlugKey(tag.Slug)
		if _, err := txn.Get(slugKey); err == nil {
			return ErrDuplicateSlug
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		id, err := getNextID(txn, TagSeqKey)
		if err != nil {
			return err
		}
		tag.ID = id

		data, err := marshalEntity(tag)
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(TagKeyPrefix, tag.ID), data); err != nil {
			return err
		}
		return txn.Set(slugKey, []byte(strconv.Itoa(tag.ID)))
	})
}

// GetByID retrieves a tag by ID
func (r *BadgerTagRepository) GetByID(ctx context.Context, id int) (*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(TagKeyPrefix, id), &tag)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetBySlug retrieves a tag through the slug index
func (r *BadgerTagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagSlugKey(slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var id int
		err = item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(TagKeyPrefix, id), &tag)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// List returns all tags ordered by name
func (r *BadgerTagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tags []*models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		tags, err = scanPrefix[models.Tag](txn, TagKeyPrefix)
		return err
	})
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, err
}

// hydrateTags resolves TagIDs into Tags. Dangling IDs are dropped.
func hydrateTags(txn *badger.Txn, posts []*models.Post) error {
	cache := make(map[int]*models.Tag)
	for _, p := range posts {
		tags := make([]*models.Tag, 0, len(p.TagIDs))
		for _, id := range p.TagIDs {
			tag, ok := cache[id]
			if !ok {
				var t models.Tag
				err := getEntity(txn, entityKey(TagKeyPrefix, id), &t)
				if errors.Is(err, ErrNotFound) {
					cache[id] = nil
					continue
				}
				if err != nil {
					return err
				}
				tag = &t
				cache[id] = tag
			}
			if tag != nil {
				tags = append(tags, tag)
			}
		}
		p.Tags = tags
	}
	return nil
}
