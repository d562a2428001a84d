package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/services/vendormatch"
)

// VendorRepository implements vendormatch.Catalog on Postgres. Lookups are
// always scoped to one user's catalog.
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) firstVendor(query *gorm.DB) (*models.Vendor, error) {
	var vendor models.Vendor
	err := query.Preload("Aliases").First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *VendorRepository) FindByVKN(userID uuid.UUID, vkn string) (*models.Vendor, error) {
	return r.firstVendor(r.db.Where("user_id = ? AND vkn = ?", userID, vkn))
}

func (r *VendorRepository) FindByTCKN(userID uuid.UUID, tckn string) (*models.Vendor, error) {
	return r.firstVendor(r.db.Where("user_id = ? AND tckn = ?", userID, tckn))
}

func (r *VendorRepository) FindByNormalizedName(userID uuid.UUID, name string) (*models.Vendor, error) {
	return r.firstVendor(r.db.Where("user_id = ? AND normalized_name = ?", userID, name))
}

func (r *VendorRepository) FindByAlias(userID uuid.UUID, normalized string) (*models.Vendor, error) {
	return r.firstVendor(r.db.
		Joins("JOIN vendor_aliases ON vendor_aliases.vendor_id = vendors.id").
		Where("vendors.user_id = ? AND vendor_aliases.normalized_alias = ?", userID, normalized))
}

func (r *VendorRepository) ListAll(userID uuid.UUID) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.Preload("Aliases").Where("user_id = ?", userID).Find(&vendors).Error
	return vendors, err
}

func (r *VendorRepository) GetByID(id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.Preload("Aliases").First(&vendor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Create inserts a vendor. The unique index on (user_id, normalized_name)
// makes a concurrent duplicate creation fail fast as ErrDuplicateName.
func (r *VendorRepository) Create(vendor *models.Vendor) error {
	err := r.db.Create(vendor).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return vendormatch.ErrDuplicateName
	}
	return err
}

func (r *VendorRepository) AddAlias(alias *models.VendorAlias) error {
	return r.db.Create(alias).Error
}

func (r *VendorRepository) Save(vendor *models.Vendor) error {
	return r.db.Save(vendor).Error
}

func (r *VendorRepository) CreateAudit(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// Search matches display or normalized names and VKN with a LIKE filter,
// for list endpoints and autocomplete.
func (r *VendorRepository) Search(userID uuid.UUID, term string, limit, offset int) ([]models.Vendor, error) {
	var vendors []models.Vendor
	query := r.db.Preload("Aliases").Where("user_id = ?", userID).Order("display_name ASC")
	if term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"display_name ILIKE ? OR normalized_name ILIKE ? OR vkn LIKE ?",
			like, like, like,
		)
	}
	err := query.Limit(limit).Offset(offset).Find(&vendors).Error
	return vendors, err
}
