package ports

// EventBus diffuse les changements du store aux observateurs du même runtime
// (SSE, notifier) pour qu'ils relisent l'état sans poller le store eux-mêmes.
type EventBus interface {
	Publish(topic string, payload []byte)
	Subscribe() (ch <-chan Event, cancel func())
}

type Event struct {
	Topic   string
	Payload []byte
}
