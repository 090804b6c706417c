package engine

import "linediff/logger"

type EventType string

// Event type constants
const (
	EventClearCache EventType = "clear_cache"
	EventLogStats   EventType = "log_stats"
	EventResetStats EventType = "reset_stats"
)

var eventTypeMap map[string]EventType

func init() {
	eventTypeMap = buildEventTypeMap()
}

func buildEventTypeMap() map[string]EventType {
	eventMap := make(map[string]EventType)

	allEventTypes := []EventType{
		EventClearCache,
		EventLogStats,
		EventResetStats,
	}

	for _, eventType := range allEventTypes {
		eventMap[string(eventType)] = eventType
	}

	return eventMap
}

// EventTypeFromString returns "" for unknown events.
func EventTypeFromString(s string) EventType {
	if eventType, exists := eventTypeMap[s]; exists {
		return eventType
	}
	return ""
}

type Event struct {
	Type EventType
	Data any
}

func (e *Engine) handleEvent(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}

	switch event.Type {
	case EventClearCache:
		n := e.cache.Len()
		e.cache.Purge()
		logger.Info("cache cleared, dropped %d results", n)
	case EventLogStats:
		e.logStats()
	case EventResetStats:
		e.metrics.Reset()
		logger.Info("stats reset")
	}
}
