package cartevents

import "time"

const (
	TopicName           = "cart"
	cartCreatedName     = TopicName + ".created"
	itemAddedName       = TopicName + ".item.added"
	itemRemovedName     = TopicName + ".item.removed"
	quantityUpdatedName = TopicName + ".quantity.updated"
	itemsReplacedName   = TopicName + ".items.replaced"
	cartClearedName     = TopicName + ".cleared"
)

type CartCreated struct {
	CartUID   string
	CreatedAt time.Time
}

func (e CartCreated) GetEventTypeName() string {
	return cartCreatedName
}

func (e CartCreated) GetAggregateName() string {
	return e.CartUID
}

type ItemAdded struct {
	CartUID      string
	ProductUID   string
	Quantity     int
	LastModified time.Time
}

func (e ItemAdded) GetEventTypeName() string {
	return itemAddedName
}

func (e ItemAdded) GetAggregateName() string {
	return e.CartUID
}

type ItemRemoved struct {
	CartUID      string
	ProductUID   string
	LastModified time.Time
}

func (e ItemRemoved) GetEventTypeName() string {
	return itemRemovedName
}

func (e ItemRemoved) GetAggregateName() string {
	return e.CartUID
}

type QuantityUpdated struct {
	CartUID      string
	ProductUID   string
	Quantity     int
	LastModified time.Time
}

func (e QuantityUpdated) GetEventTypeName() string {
	return quantityUpdatedName
}

func (e QuantityUpdated) GetAggregateName() string {
	return e.CartUID
}

type ItemsReplaced struct {
	CartUID      string
	ItemCount    int
	LastModified time.Time
}

func (e ItemsReplaced) GetEventTypeName() string {
	return itemsReplacedName
}

func (e ItemsReplaced) GetAggregateName() string {
	return e.CartUID
}

type CartCleared struct {
	CartUID      string
	LastModified time.Time
}

func (e CartCleared) GetEventTypeName() string {
	return cartClearedName
}

func (e CartCleared) GetAggregateName() string {
	return e.CartUID
}
