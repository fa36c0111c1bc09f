package catalog

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitTopics struct {
	ListingUpsertedTopic string
	ListingDeletedTopic  string
	Url                  string
}

// ListingPublisher pushes listing changes from the ingest side onto the queue.
type ListingPublisher struct {
	RabbitTopics
	conn    *amqp.Connection
	channel *amqp.Channel
}

func (t *ListingPublisher) Connect() error {
	conn, err := amqp.Dial(t.Url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	t.conn = conn
	t.channel = ch
	for _, topic := range []string{t.ListingUpsertedTopic, t.ListingDeletedTopic} {
		if _, err := ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}

func (t *ListingPublisher) send(topic string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return t.channel.Publish("", topic, true, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (t *ListingPublisher) ListingUpserted(l *Listing) error {
	return t.send(t.ListingUpsertedTopic, l)
}

func (t *ListingPublisher) ListingDeleted(id uint) error {
	return t.send(t.ListingDeletedTopic, id)
}

func (t *ListingPublisher) Close() error {
	return t.conn.Close()
}

// ListingConsumer keeps a MemoryIndex in sync with the listing feed.
type ListingConsumer struct {
	RabbitTopics
	Index   *MemoryIndex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func (t *ListingConsumer) Connect() error {
	conn, err := amqp.Dial(t.Url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	t.conn = conn
	t.channel = ch
	go t.consume(t.ListingUpsertedTopic, func(body []byte) {
		listing := &Listing{}
		if err := json.Unmarshal(body, listing); err != nil {
			log.Printf("Failed to decode listing: %v", err)
			return
		}
		t.Index.Upsert(listing)
	})
	go t.consume(t.ListingDeletedTopic, func(body []byte) {
		var id uint
		if err := json.Unmarshal(body, &id); err != nil {
			log.Printf("Failed to decode listing id: %v", err)
			return
		}
		t.Index.Delete(id)
	})
	return nil
}

func (t *ListingConsumer) consume(topic string, handle func(body []byte)) {
	msgs, err := t.channel.Consume(topic, "", true, false, false, false, nil)
	if err != nil {
		log.Printf("Failed to consume %s: %v", topic, err)
		return
	}
	for d := range msgs {
		handle(d.Body)
	}
}

func (t *ListingConsumer) Close() error {
	return t.conn.Close()
}
