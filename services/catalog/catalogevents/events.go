package catalogevents

import "time"

const (
	TopicName          = "product"
	productCreatedName = TopicName + ".created"
	productUpdatedName = TopicName + ".updated"
	productDeletedName = TopicName + ".deleted"
)

type ProductCreated struct {
	ProductUID string
	Code       string
	Category   string
	Price      float64
}

func (e ProductCreated) GetEventTypeName() string {
	return productCreatedName
}

func (e ProductCreated) GetAggregateName() string {
	return e.ProductUID
}

type ProductUpdated struct {
	ProductUID   string
	Code         string
	LastModified time.Time
}

func (e ProductUpdated) GetEventTypeName() string {
	return productUpdatedName
}

func (e ProductUpdated) GetAggregateName() string {
	return e.ProductUID
}

type ProductDeleted struct {
	ProductUID string
	Code       string
}

func (e ProductDeleted) GetEventTypeName() string {
	return productDeletedName
}

func (e ProductDeleted) GetAggregateName() string {
	return e.ProductUID
}
