package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
)

const DefaultSelectionsKey = "quoteopt:selections"

// SelectionStore keeps pins in a Redis hash, field = part number, value = supplier.
// Several operators pointing at the same key share one set of pins.
type SelectionStore struct {
	client *redis.Client
	key    string
}

var _ repositories.SelectionRepository = (*SelectionStore)(nil)

func NewSelectionStore(client *redis.Client, key string) *SelectionStore {
	if key == "" {
		key = DefaultSelectionsKey
	}
	return &SelectionStore{client: client, key: key}
}

func (s *SelectionStore) GetSelections(ctx context.Context) (entities.SupplierSelection, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read selections from %s: %w", s.key, err)
	}
	selections := make(entities.SupplierSelection, len(fields))
	for part, supplier := range fields {
		selections[entities.PartNumber(part)] = entities.SupplierID(supplier)
	}
	return selections, nil
}

func (s *SelectionStore) SetPin(ctx context.Context, partNumber entities.PartNumber, supplier entities.SupplierID) error {
	if err := s.client.HSet(ctx, s.key, string(partNumber), string(supplier)).Err(); err != nil {
		return fmt.Errorf("failed to pin %s: %w", partNumber, err)
	}
	return nil
}

func (s *SelectionStore) ClearPin(ctx context.Context, partNumber entities.PartNumber) error {
	if err := s.client.HDel(ctx, s.key, string(partNumber)).Err(); err != nil {
		return fmt.Errorf("failed to clear pin for %s: %w", partNumber, err)
	}
	return nil
}

func (s *SelectionStore) ClearAll(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear selections at %s: %w", s.key, err)
	}
	return nil
}
