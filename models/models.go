package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Document запись любой коллекции. Поля коллекции лежат в Data,
// хеш пароля auth коллекций хранится отдельно и наружу не отдается.
type Document struct {
	ID         string `gorm:"primary_key"`
	Collection string `gorm:"index;not null"`
	Data       JSON   `gorm:"type:text"`
	Hash       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JSON хранит данные документа в текстовой колонке
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("could not encode document data: %w", err)
	}
	return string(raw), nil
}

func (j *JSON) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*j = JSON{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported document data type %T", src)
	}

	data := JSON{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("could not decode document data: %w", err)
	}
	*j = data
	return nil
}

// Clone копия документа, чтобы хранилища не делились картами с вызывающим кодом
func (d *Document) Clone() *Document {
	cp := *d
	cp.Data = make(JSON, len(d.Data))
	for k, v := range d.Data {
		cp.Data[k] = v
	}
	return &cp
}
