package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(100);not null;index"`
	Description    string          `gorm:"type:varchar(300)"`
	Brand          string          `gorm:"type:varchar(100)"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CurrentStock   int             `gorm:"not null;default:0"`
	MinStock       int             `gorm:"not null;default:0"`
	MaxStock       int             `gorm:"not null;default:0"`
	ExpiryDate     time.Time       `gorm:"type:date;not null;index"`
	ProductionDate *time.Time      `gorm:"type:date"`
	Kind           string          `gorm:"type:varchar(100)"`
	Presentation   string          `gorm:"type:varchar(100)"`
	Format         string          `gorm:"type:varchar(100)"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index"`
	NutritionID    *uuid.UUID      `gorm:"type:uuid"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Brand:             m.Brand,
		Price:             m.Price,
		CurrentStock:      m.CurrentStock,
		MinStock:          m.MinStock,
		MaxStock:          m.MaxStock,
		ExpiryDate:        m.ExpiryDate,
		ProductionDate:    m.ProductionDate,
		Kind:              m.Kind,
		Presentation:      m.Presentation,
		Format:            m.Format,
		CategoryID:        m.CategoryID,
		NutritionID:       m.NutritionID,
	}
	if m.DeletedAt.Valid {
		deleted := m.DeletedAt.Time
		p.DeletedAt = &deleted
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Brand = p.Brand
	m.Price = p.Price
	m.CurrentStock = p.CurrentStock
	m.MinStock = p.MinStock
	m.MaxStock = p.MaxStock
	m.ExpiryDate = p.ExpiryDate
	m.ProductionDate = p.ProductionDate
	m.Kind = p.Kind
	m.Presentation = p.Presentation
	m.Format = p.Format
	m.CategoryID = p.CategoryID
	m.NutritionID = p.NutritionID
	m.DeletedAt = gorm.DeletedAt{}
	if p.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// NutritionModel is the persistence model for NutritionInfo.
type NutritionModel struct {
	BaseModel
	Ingredients     string `gorm:"type:varchar(300)"`
	PreparationTime string `gorm:"type:varchar(100)"`
	Proteins        string `gorm:"type:varchar(45)"`
	Sugar           string `gorm:"type:varchar(45)"`
	Gluten          string `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (NutritionModel) TableName() string {
	return "nutrition_info"
}

// ToDomain converts the persistence model to a domain NutritionInfo.
func (m *NutritionModel) ToDomain() *catalog.NutritionInfo {
	return &catalog.NutritionInfo{
		BaseEntity:      m.BaseModel.ToDomain(),
		Ingredients:     m.Ingredients,
		PreparationTime: m.PreparationTime,
		Proteins:        m.Proteins,
		Sugar:           m.Sugar,
		Gluten:          m.Gluten,
	}
}

// FromDomain populates the persistence model from a domain NutritionInfo.
func (m *NutritionModel) FromDomain(n *catalog.NutritionInfo) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.Ingredients = n.Ingredients
	m.PreparationTime = n.PreparationTime
	m.Proteins = n.Proteins
	m.Sugar = n.Sugar
	m.Gluten = n.Gluten
}

// ExpiryRuleModel is the persistence model for ExpiryAlertRule.
type ExpiryRuleModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(255)"`
	DaysBefore  int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ExpiryRuleModel) TableName() string {
	return "expiry_alert_rules"
}

// ToDomain converts the persistence model to a domain ExpiryAlertRule.
func (m *ExpiryRuleModel) ToDomain() *catalog.ExpiryAlertRule {
	return &catalog.ExpiryAlertRule{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		DaysBefore:  m.DaysBefore,
	}
}

// FromDomain populates the persistence model from a domain ExpiryAlertRule.
func (m *ExpiryRuleModel) FromDomain(r *catalog.ExpiryAlertRule) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Name = r.Name
	m.Description = r.Description
	m.DaysBefore = r.DaysBefore
}

// ProductExpiryRuleModel links a product to an expiry alert rule.
type ProductExpiryRuleModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RuleID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductExpiryRuleModel) TableName() string {
	return "product_expiry_rules"
}
