package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/catalogshop/lib/mycontext"
	"github.com/MarcGrol/catalogshop/lib/myerrors"
	"github.com/MarcGrol/catalogshop/lib/myevents"
	"github.com/MarcGrol/catalogshop/lib/myhttp"
	"github.com/MarcGrol/catalogshop/lib/mylog"
	"github.com/MarcGrol/catalogshop/lib/mypubsub"
	"github.com/MarcGrol/catalogshop/lib/mystore"
	"github.com/MarcGrol/catalogshop/lib/mytime"
)

// OutboxPublisher stores events in an outbox as part of the callers transaction.
// Stored events are forwarded to pubsub once that transaction has been committed,
// so subscribers never see events of rolled back changes.
// Forwarding is at-least-once: consumers de-duplicate on envelope uid.
type OutboxPublisher struct {
	outbox    mystore.Store[myevents.EventEnvelope]
	pubsub    mypubsub.PubSub
	enveloper enveloper
	logger    mylog.Logger
	wakeup    chan struct{}
}

var _ Publisher = &OutboxPublisher{}

// New expects the outbox to live in the same database as the stores of the business transactions.
func New(outbox mystore.Store[myevents.EventEnvelope], pubsub mypubsub.PubSub, nower mytime.Nower) *OutboxPublisher {
	return &OutboxPublisher{
		outbox:    outbox,
		pubsub:    pubsub,
		enveloper: newEnveloper(nower),
		logger:    mylog.New("publisher"),
		wakeup:    make(chan struct{}, 1),
	}
}

func (p *OutboxPublisher) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")

	return nil
}

func (p *OutboxPublisher) CreateTopic(c context.Context, topicName string) error {
	return p.pubsub.CreateTopic(c, topicName)
}

func (p *OutboxPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := p.enveloper.do(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope %s: %s", envelope.UID, err)
	}

	// non-blocking: a pending wakeup covers this event as well
	select {
	case p.wakeup <- struct{}{}:
	default:
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityDebug, "Stored event %s in outbox", envelope)

	return nil
}

// RunForwarder forwards pending events until c is cancelled. It runs after every
// publication and at least once per interval.
func (p *OutboxPublisher) RunForwarder(c context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
		case <-p.wakeup:
		}

		err := p.Forward(c)
		if err != nil {
			p.logger.Log(c, "", mylog.SeverityError, "Error forwarding events: %s", err)
		}
	}
}

// Forward publishes all pending events in order of creation. It stops at the first
// failure so that events of an aggregate are never reordered.
func (p *OutboxPublisher) Forward(c context.Context) error {
	envelopes, err := p.outbox.List(c)
	if err != nil {
		return fmt.Errorf("error fetching pending events: %s", err)
	}
	slices.SortStableFunc(envelopes, func(a, b myevents.EventEnvelope) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	for _, envelope := range envelopes {
		err := p.forward(c, envelope.Topic, envelope.UID)
		if err != nil {
			if myerrors.IsNotFound(err) {
				// forwarded concurrently
				continue
			}
			return err
		}
	}

	return nil
}

// forward publishes a single stored event and removes it from the outbox.
func (p *OutboxPublisher) forward(c context.Context, topic string, uid string) error {
	return p.outbox.RunInTransaction(c, func(c context.Context) error {
		envelope, found, err := p.outbox.Get(c, uid)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching event %s: %s", uid, err))
		}
		if !found || envelope.Topic != topic {
			return myerrors.NewNotFoundErrorf("pending event %s on topic %s not found", uid, topic)
		}

		jsonBytes, err := json.Marshal(envelope)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error serializing envelope %s: %s", uid, err))
		}

		err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
		if err != nil {
			return myerrors.NewUnavailableError(fmt.Errorf("error publishing event %s: %s", envelope, err))
		}

		err = p.outbox.Delete(c, uid)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error removing event %s from outbox: %s", uid, err))
		}

		p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Published event %s", envelope)

		return nil
	})
}

func (p *OutboxPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(p.logger)

		topicName := mux.Vars(r)["topic"]
		eventUID := mux.Vars(r)["uid"]

		err := p.forward(c, topicName, eventUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully published event",
		})
	}
}
