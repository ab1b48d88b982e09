package application

import (
	"github.com/stockledger/inventory-service/internal/domain"
)

func toTransactionDTO(txn *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:             txn.ID.String(),
		ItemID:         txn.ItemID,
		ItemName:       txn.ItemName,
		SKU:            txn.SKU,
		Type:           string(txn.Type),
		Quantity:       txn.Quantity,
		BranchID:       txn.BranchID,
		TargetBranchID: txn.TargetBranchID,
		Personnel:      txn.Personnel,
		OriginOrSource: txn.OriginOrSource,
		PlacementInfo:  txn.PlacementInfo,
		Notes:          txn.Notes,
		Status:         string(txn.Status),
		RequestedBy:    txn.RequestedBy,
		ApprovedBy:     txn.ApprovedBy,
		CreatedAt:      txn.CreatedAt,
		UpdatedAt:      txn.UpdatedAt,
	}
}

func toTransactionDTOs(txns []*domain.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, 0, len(txns))
	for _, txn := range txns {
		dtos = append(dtos, toTransactionDTO(txn))
	}
	return dtos
}

func toItemDTO(item *domain.InventoryItem) ItemDTO {
	return ItemDTO{
		ID:           item.ID,
		SKU:          item.SKU,
		Name:         item.Name,
		Quantity:     item.Quantity,
		MinThreshold: item.MinThreshold,
		Shelf:        item.Shelf,
		Section:      item.Section,
		Placement:    item.Placement(),
		BranchID:     item.BranchID,
		LowStock:     item.IsBelowThreshold(),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func toItemDTOs(items []*domain.InventoryItem) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item))
	}
	return dtos
}

func toBranchDTO(branch *domain.Branch) BranchDTO {
	return BranchDTO{
		ID:             branch.ID,
		Name:           branch.Name,
		Address:        branch.Address,
		TotalShelves:   branch.TotalShelves,
		TotalSections:  branch.TotalSections,
		CustomSections: branch.CustomSections,
		CreatedAt:      branch.CreatedAt,
		UpdatedAt:      branch.UpdatedAt,
	}
}

func toBranchDTOs(branches []*domain.Branch) []BranchDTO {
	dtos := make([]BranchDTO, 0, len(branches))
	for _, branch := range branches {
		dtos = append(dtos, toBranchDTO(branch))
	}
	return dtos
}
