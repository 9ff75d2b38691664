package myevents

import "time"

type EventEnvelope struct {
	UID           string    `json:"uid" bson:"_id" datastore:"uid"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt" datastore:"createdAt"`
	Topic         string    `json:"topic" bson:"topic" datastore:"topic"`
	AggregateUID  string    `json:"aggregateUID" bson:"aggregateUID" datastore:"aggregateUID"`
	EventTypeName string    `json:"eventTypeName" bson:"eventTypeName" datastore:"eventTypeName"`
	EventPayload  string    `json:"eventPayload" bson:"eventPayload" datastore:"eventPayload,noindex"`
}

func (e EventEnvelope) String() string {
	return e.Topic + "." + e.EventTypeName + "." + e.AggregateUID
}

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}
