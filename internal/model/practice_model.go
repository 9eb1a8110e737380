package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Practice struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Track     string         `gorm:"type:varchar(64);not null;index"`
	Status    string         `gorm:"type:varchar(32);not null;default:'active';index"`
	Questions datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (Practice) TableName() string {
	return "practices"
}
