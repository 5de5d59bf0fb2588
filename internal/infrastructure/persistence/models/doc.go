// Package models holds the GORM row types for accounts, products and orders.
// Domain types stay free of ORM tags; each model converts with ToDomain and
// <Name>ModelFromDomain.
package models
