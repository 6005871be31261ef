// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain all GORM annotations and table mappings
// 3. ToDomain / FromDomain convert between the two
// 4. Repositories only read and write persistence models
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - catalog.go: products, categories, nutrition info and expiry alert rules
// - identity.go: users and roles
// - partner.go: suppliers
// - order.go: orders and order lines
// - notification.go: user notifications
package models
