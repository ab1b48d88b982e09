package application

import (
	"context"
	"fmt"

	"github.com/stockledger/inventory-service/internal/domain"
	"github.com/stockledger/inventory-service/pkg/events"
	"github.com/stockledger/inventory-service/pkg/kafka"
	"github.com/stockledger/inventory-service/pkg/logging"
	"github.com/stockledger/inventory-service/pkg/metrics"
)

// ItemService manages inventory items and their placements
type ItemService struct {
	items     domain.ItemRepository
	branches  domain.BranchRepository
	publisher EventPublisher
	factory   *events.Factory
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewItemService creates an ItemService
func NewItemService(
	items domain.ItemRepository,
	branches domain.BranchRepository,
	publisher EventPublisher,
	factory *events.Factory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ItemService {
	return &ItemService{
		items:     items,
		branches:  branches,
		publisher: publisher,
		factory:   factory,
		metrics:   m,
		logger:    logger.WithComponent("items"),
	}
}

// Create registers a new inventory item. The section is validated against
// the branch layout and reset to 1 when it falls outside it.
func (s *ItemService) Create(ctx context.Context, cmd CreateItemCommand) (*ItemDTO, error) {
	branch, err := s.branches.FindByID(ctx, cmd.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return nil, domain.ErrBranchNotFound
	}

	if cmd.Shelf < 1 || cmd.Shelf > branch.TotalShelves {
		return nil, &domain.InvalidPlacementError{
			Input:  domain.FormatPlacement(cmd.Shelf, cmd.Section),
			Reason: fmt.Sprintf("shelf outside branch layout (1-%d)", branch.TotalShelves),
		}
	}
	section := branch.ClampSection(cmd.Shelf, cmd.Section)

	item, err := domain.NewInventoryItem(
		cmd.SKU, cmd.Name, cmd.Quantity, cmd.MinThreshold, cmd.Shelf, section, cmd.BranchID)
	if err != nil {
		return nil, err
	}

	if err := s.items.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}
	publishItemEvents(ctx, s.publisher, s.factory, s.metrics, item)

	s.publisher.Publish(ctx, kafka.Topics.InventoryEvents, s.factory.NewEvent(
		events.ItemCreated, "item/"+item.ID, toItemDTO(item)))

	s.logger.Info("item created",
		"itemId", item.ID,
		"sku", item.SKU,
		"branchId", item.BranchID,
		"placement", item.Placement(),
	)

	dto := toItemDTO(item)
	return &dto, nil
}

// Relocate moves an item to a new placement, clamping the section to the
// destination branch's layout
func (s *ItemService) Relocate(ctx context.Context, id string, cmd RelocateItemCommand) (*ItemDTO, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}

	branchID := cmd.BranchID
	if branchID == "" {
		branchID = item.BranchID
	}
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return nil, domain.ErrBranchNotFound
	}

	if cmd.Shelf < 1 || cmd.Shelf > branch.TotalShelves {
		return nil, &domain.InvalidPlacementError{
			Input:  domain.FormatPlacement(cmd.Shelf, cmd.Section),
			Reason: fmt.Sprintf("shelf outside branch layout (1-%d)", branch.TotalShelves),
		}
	}
	section := branch.ClampSection(cmd.Shelf, cmd.Section)

	if err := item.Relocate(cmd.Shelf, section, branchID); err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}
	publishItemEvents(ctx, s.publisher, s.factory, s.metrics, item)

	s.logger.Info("item relocated",
		"itemId", item.ID,
		"branchId", item.BranchID,
		"placement", item.Placement(),
	)

	dto := toItemDTO(item)
	return &dto, nil
}

// Get returns one item
func (s *ItemService) Get(ctx context.Context, id string) (*ItemDTO, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	dto := toItemDTO(item)
	return &dto, nil
}

// List returns all items, optionally for one branch
func (s *ItemService) List(ctx context.Context, branchID string) ([]ItemDTO, error) {
	var (
		items []*domain.InventoryItem
		err   error
	)
	if branchID != "" {
		items, err = s.items.FindByBranch(ctx, branchID)
	} else {
		items, err = s.items.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return toItemDTOs(items), nil
}

// ListLowStock returns items at or below their threshold
func (s *ItemService) ListLowStock(ctx context.Context) ([]ItemDTO, error) {
	items, err := s.items.FindBelowThreshold(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock items: %w", err)
	}
	return toItemDTOs(items), nil
}
