// Package ws fans created-job notifications out to websocket subscribers of
// a task.
package ws

import "sync"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions by topic. Topics are task IDs.
type Hub struct {
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
	count     chan countRequest
	done      chan struct{}
	closeOnce sync.Once
}

// message couples payload with its topic.
type message struct {
	topic   string
	payload []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	topic  string
	client Subscriber
}

type countRequest struct {
	topic string
	reply chan int
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
		count:     make(chan countRequest),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.topic]; !ok {
				h.clients[sub.topic] = make(map[Subscriber]struct{})
			}
			h.clients[sub.topic][sub.client] = struct{}{}
		case sub := <-h.unreg:
			h.remove(sub.topic, sub.client)
		case msg := <-h.broadcast:
			for c := range h.clients[msg.topic] {
				if err := c.Send(msg.payload); err != nil {
					c.Close()
					h.remove(msg.topic, c)
				}
			}
		case req := <-h.count:
			req.reply <- len(h.clients[req.topic])
		case <-h.done:
			for topic, clients := range h.clients {
				for c := range clients {
					c.Close()
				}
				delete(h.clients, topic)
			}
			return
		}
	}
}

func (h *Hub) remove(topic string, client Subscriber) {
	clients, ok := h.clients[topic]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, topic)
	}
}

// Register adds a client to a topic.
func (h *Hub) Register(topic string, client Subscriber) {
	select {
	case h.register <- subscription{topic: topic, client: client}:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(topic string, client Subscriber) {
	select {
	case h.unreg <- subscription{topic: topic, client: client}:
	case <-h.done:
	}
}

// Broadcast sends payload to every client of topic. It is a no-op once the
// hub is closed.
func (h *Hub) Broadcast(topic string, payload []byte) {
	select {
	case h.broadcast <- message{topic: topic, payload: payload}:
	case <-h.done:
	}
}

// Subscribers reports how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{topic: topic, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Close disconnects every client and stops the hub.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
