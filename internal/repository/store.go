// Package repository is the GORM-backed store behind detection and bargain
// hunting. Every method is a single query; nothing spans entities.
package repository

import "gorm.io/gorm"

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
