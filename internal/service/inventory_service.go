package service

import (
	"encoding/json"
	"errors"

	"stockly-api/internal/model"
	"stockly-api/internal/repository"
	"stockly-api/internal/ws"
	"stockly-api/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrSKUTaken        = errors.New("SKU already exists")
	ErrProductNotFound = errors.New("product not found")
)

type InventoryService interface {
	CreateProduct(req *model.Product) error
	UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	GetAllProducts() ([]model.Product, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	wsHub       *ws.Hub
}

func NewInventoryService(productRepo repository.ProductRepository, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		wsHub:       hub,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product) error {
	// 1. Validate struct
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &ErrValidation{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}

	// 2. Check SKU duplication
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrSKUTaken
	}

	// 3. Persist
	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.alertIfLowStock(req)
	return nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	existing.Name = req.Name
	existing.SKU = req.SKU
	existing.Category = req.Category
	existing.Status = req.Status
	existing.Price = req.Price
	existing.Quantity = req.Quantity

	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		return nil, &ErrValidation{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}

	s.alertIfLowStock(existing)
	return existing, nil
}

func (s *inventoryService) DeleteProduct(id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(id)
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

// alertIfLowStock broadcasts a low-stock alert when a mutation leaves
// the product with stock on hand at or below the threshold.
func (s *inventoryService) alertIfLowStock(p *model.Product) {
	if s.wsHub == nil {
		return
	}
	qty := int(p.Quantity)
	if qty <= 0 || qty > LowStockThreshold {
		return
	}

	go func() {
		payload := map[string]interface{}{
			"type": "low_stock_alert",
			"product": map[string]interface{}{
				"id":       p.ID,
				"sku":      p.SKU,
				"name":     p.Name,
				"quantity": qty,
			},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
