package notifier

import (
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// Critical events
	EventCircuitBreakerOpen EventType = "circuit_breaker_open"

	// Warning events
	EventHighFailureRate EventType = "high_failure_rate"
	EventGenerationQuota EventType = "generation_quota_exceeded"

	// Info events
	EventCircuitBreakerRecovered EventType = "circuit_breaker_recovered"
	EventServerStarted           EventType = "server_started"
)

// Severity represents the severity level of an event
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Event represents a system event
type Event struct {
	Type      EventType
	Severity  Severity
	Data      map[string]interface{}
	Timestamp time.Time
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, severity Severity) *Event {
	return &Event{
		Type:      eventType,
		Severity:  severity,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

// WithData adds data to the event (chainable)
func (e *Event) WithData(key string, value interface{}) *Event {
	e.Data[key] = value
	return e
}

// EventHandler is a function that handles events
type EventHandler func(event *Event)

// EventBus manages event publishing and subscription
type EventBus struct {
	allHandlers []EventHandler
	mu          sync.RWMutex
}

var globalBus *EventBus
var busOnce sync.Once

// GetEventBus returns the global event bus instance
func GetEventBus() *EventBus {
	busOnce.Do(func() {
		globalBus = &EventBus{}
	})
	return globalBus
}

// SubscribeAll adds a handler that receives all events
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allHandlers = append(b.allHandlers, handler)
}

// Publish sends an event to all subscribed handlers
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, handler := range b.allHandlers {
		go handler(event)
	}
}

// PublishCircuitBreakerOpen emits a critical circuit-open event
func PublishCircuitBreakerOpen(name string, failures int, cooldown time.Duration) {
	GetEventBus().Publish(NewEvent(EventCircuitBreakerOpen, SeverityCritical).
		WithData("name", name).
		WithData("failures", failures).
		WithData("cooldown", cooldown.String()))
}

// PublishCircuitBreakerRecovered emits an info recovery event
func PublishCircuitBreakerRecovered(name string) {
	GetEventBus().Publish(NewEvent(EventCircuitBreakerRecovered, SeverityInfo).
		WithData("name", name))
}

// PublishHighFailureRate emits a warning when failures approach the threshold
func PublishHighFailureRate(name string, failures, threshold int) {
	GetEventBus().Publish(NewEvent(EventHighFailureRate, SeverityWarning).
		WithData("name", name).
		WithData("failures", failures).
		WithData("threshold", threshold))
}

// PublishGenerationQuota emits a warning when the model API reports quota exhaustion
func PublishGenerationQuota(model string) {
	GetEventBus().Publish(NewEvent(EventGenerationQuota, SeverityWarning).
		WithData("model", model))
}

// PublishServerStarted emits an info event after startup
func PublishServerStarted(port string) {
	GetEventBus().Publish(NewEvent(EventServerStarted, SeverityInfo).
		WithData("port", port))
}
