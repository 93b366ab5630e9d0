package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Features список возможностей тарифа, хранится в JSONB.
type Features []string

// Value реализует driver.Valuer.
func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan реализует sql.Scanner.
func (f *Features) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = Features{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("features: unsupported type %T", src)
	}
	return json.Unmarshal(data, (*[]string)(f))
}

// SubscriptionPlan элемент каталога тарифов. Price хранится в минимальных единицах валюты.
type SubscriptionPlan struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Price        int64     `db:"price" json:"price"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	Features     Features  `db:"features" json:"features"`
	Popular      bool      `db:"popular" json:"popular"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DummyPlan тело запроса создания или изменения тарифа.
type DummyPlan struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Price        int64    `json:"price" validate:"gte=0"`
	DurationDays int      `json:"duration_days" validate:"required,gt=0"`
	Features     []string `json:"features" validate:"dive,required"`
	Popular      bool     `json:"popular"`
}
