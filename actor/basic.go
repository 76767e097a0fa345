package actor

import "sync"

// Basic an in-process actor keeping its messages
type Basic struct {
	id       string
	name     string
	online   bool
	messages []string
	mutex    sync.Mutex
}

// NewBasic create an in-process actor
func NewBasic(id string, name string) *Basic {
	if name == "" {
		name = id
	}
	return &Basic{id: id, name: name, online: true}
}

// ID the actor id
func (a *Basic) ID() string { return a.id }

// Name the display name
func (a *Basic) Name() string { return a.name }

// Online the connection state
func (a *Basic) Online() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.online
}

// Disconnect mark the actor offline
func (a *Basic) Disconnect() {
	a.mutex.Lock()
	a.online = false
	a.mutex.Unlock()
}

// SendMessage keep the message
func (a *Basic) SendMessage(message string) error {
	a.mutex.Lock()
	a.messages = append(a.messages, message)
	a.mutex.Unlock()
	return nil
}

// Messages the received messages
func (a *Basic) Messages() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]string{}, a.messages...)
}
