package application

import (
	"context"
	"fmt"

	"github.com/stockledger/inventory-service/internal/domain"
	"github.com/stockledger/inventory-service/pkg/logging"
)

// BranchService manages branches and their shelf layouts
type BranchService struct {
	branches domain.BranchRepository
	logger   *logging.Logger
}

// NewBranchService creates a BranchService
func NewBranchService(branches domain.BranchRepository, logger *logging.Logger) *BranchService {
	return &BranchService{
		branches: branches,
		logger:   logger.WithComponent("branches"),
	}
}

// Create registers a new branch
func (s *BranchService) Create(ctx context.Context, cmd CreateBranchCommand) (*BranchDTO, error) {
	branch, err := domain.NewBranch(cmd.Name, cmd.Address, cmd.TotalShelves, cmd.TotalSections)
	if err != nil {
		return nil, err
	}

	if err := s.branches.Save(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}

	s.logger.Info("branch created",
		"branchId", branch.ID,
		"name", branch.Name,
		"shelves", branch.TotalShelves,
		"sections", branch.TotalSections,
	)

	dto := toBranchDTO(branch)
	return &dto, nil
}

// Get returns one branch
func (s *BranchService) Get(ctx context.Context, id string) (*BranchDTO, error) {
	branch, err := s.loadBranch(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBranchDTO(branch)
	return &dto, nil
}

// List returns all branches
func (s *BranchService) List(ctx context.Context) ([]BranchDTO, error) {
	branches, err := s.branches.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return toBranchDTOs(branches), nil
}

// SetCustomSections overrides the section count for one shelf
func (s *BranchService) SetCustomSections(ctx context.Context, id string, shelf, sections int) (*BranchDTO, error) {
	branch, err := s.loadBranch(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := branch.SetCustomSections(shelf, sections); err != nil {
		return nil, err
	}
	if err := s.branches.Save(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}

	s.logger.Info("branch shelf override set",
		"branchId", branch.ID,
		"shelf", shelf,
		"sections", sections,
	)

	dto := toBranchDTO(branch)
	return &dto, nil
}

// ClearCustomSections removes the override for one shelf
func (s *BranchService) ClearCustomSections(ctx context.Context, id string, shelf int) (*BranchDTO, error) {
	branch, err := s.loadBranch(ctx, id)
	if err != nil {
		return nil, err
	}

	branch.ClearCustomSections(shelf)
	if err := s.branches.Save(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}

	dto := toBranchDTO(branch)
	return &dto, nil
}

// Layout returns the branch's shelf layout with labels and section counts
func (s *BranchService) Layout(ctx context.Context, id string) ([]domain.ShelfLayout, error) {
	branch, err := s.loadBranch(ctx, id)
	if err != nil {
		return nil, err
	}
	return branch.Layout(), nil
}

func (s *BranchService) loadBranch(ctx context.Context, id string) (*domain.Branch, error) {
	branch, err := s.branches.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return nil, domain.ErrBranchNotFound
	}
	return branch, nil
}
