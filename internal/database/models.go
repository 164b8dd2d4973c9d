package database

import (
	"github.com/jackc/pgtype"
	"gorm.io/gorm"
)

// AirQualityCacheRecord caches the most recent upstream air quality
// response per city. City is the normalized city name.
type AirQualityCacheRecord struct {
	gorm.Model

	City     string       `gorm:"uniqueIndex;not null"`
	Location string       `gorm:"not null"`
	Data     pgtype.JSONB `gorm:"type:jsonb;default:'{}';not null"`
}

// TableName implements the GORM Tabler interface
func (AirQualityCacheRecord) TableName() string {
	return "air_quality_cache"
}

// ForecastCacheRecord caches the most recent upstream forecast per
// coordinate pair, stored as "lat,lon" with fixed precision.
type ForecastCacheRecord struct {
	gorm.Model

	Location string       `gorm:"uniqueIndex;not null"`
	Data     pgtype.JSONB `gorm:"type:jsonb;default:'[]';not null"`
}

// TableName implements the GORM Tabler interface
func (ForecastCacheRecord) TableName() string {
	return "forecast_cache"
}
