package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/heladeria/order-form-api/models"
	"gorm.io/gorm"
)

var (
	// ErrFlavorNotFound is returned when a flavor id does not exist
	ErrFlavorNotFound = errors.New("flavor not found")
	// ErrDuplicateFlavor is returned when a flavor name is already in the catalog
	ErrDuplicateFlavor = errors.New("flavor already exists")
	// ErrInvalidFlavorName is returned for names that cannot appear in the sabores cell
	ErrInvalidFlavorName = errors.New("flavor name must be non-empty and must not contain a comma")
)

// FlavorCatalog reads and edits the list of selectable flavors
type FlavorCatalog interface {
	List(ctx context.Context) ([]models.Flavor, error)
	Missing(ctx context.Context, names []string) ([]string, error)
	Create(ctx context.Context, name string) (*models.Flavor, error)
	Delete(ctx context.Context, id uint) error
}

// FlavorService implements FlavorCatalog on top of gorm
type FlavorService struct {
	db *gorm.DB
}

var flavorServiceInstance FlavorCatalog

// NewFlavorService creates a catalog backed by db
func NewFlavorService(db *gorm.DB) *FlavorService {
	return &FlavorService{db: db}
}

// InitFlavorService creates the catalog and stores it as the process-wide instance
func InitFlavorService(db *gorm.DB) FlavorCatalog {
	flavorServiceInstance = NewFlavorService(db)
	return flavorServiceInstance
}

// GetFlavorService returns the initialized flavor catalog
func GetFlavorService() FlavorCatalog {
	return flavorServiceInstance
}

// SetFlavorService sets the flavor catalog (primarily for testing)
func SetFlavorService(service FlavorCatalog) {
	flavorServiceInstance = service
}

// List returns every flavor in insertion order
func (s *FlavorService) List(ctx context.Context) ([]models.Flavor, error) {
	var flavors []models.Flavor
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&flavors).Error; err != nil {
		return nil, fmt.Errorf("failed to list flavors: %w", err)
	}
	return flavors, nil
}

// Missing returns the names that are not in the catalog, in input order
func (s *FlavorService) Missing(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var found []string
	if err := s.db.WithContext(ctx).
		Model(&models.Flavor{}).
		Where("name IN ?", names).
		Pluck("name", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to look up flavors: %w", err)
	}

	known := make(map[string]struct{}, len(found))
	for _, name := range found {
		known[name] = struct{}{}
	}

	var missing []string
	for _, name := range names {
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// Create adds a flavor to the catalog
func (s *FlavorService) Create(ctx context.Context, name string) (*models.Flavor, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ",") {
		return nil, ErrInvalidFlavorName
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Flavor{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check flavor: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateFlavor
	}

	flavor := models.Flavor{Name: name}
	if err := s.db.WithContext(ctx).Create(&flavor).Error; err != nil {
		return nil, fmt.Errorf("failed to create flavor: %w", err)
	}
	return &flavor, nil
}

// Delete removes a flavor from the catalog
func (s *FlavorService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Flavor{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete flavor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFlavorNotFound
	}
	return nil
}
