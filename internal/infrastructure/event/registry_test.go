package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler("QnaCreated", "QnaClosed")

	registry.Register(handler, "QnaCreated", "QnaClosed")

	handlers := registry.GetHandlers("QnaCreated")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])

	assert.Len(t, registry.GetHandlers("QnaClosed"), 1)
	assert.Empty(t, registry.GetHandlers("QnaDeleted"))
}

func TestHandlerRegistry_Register_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler)

	assert.Len(t, registry.GetHandlers("QnaCreated"), 1)
	assert.Len(t, registry.GetHandlers("AnyEventType"), 1)
}

func TestHandlerRegistry_Register_Idempotent(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler("QnaCreated")
	wildcard := newTestHandler()

	registry.Register(handler, "QnaCreated")
	registry.Register(handler, "QnaCreated")
	registry.Register(wildcard)
	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers("QnaCreated"), 2)
}

func TestHandlerRegistry_GetHandlers_SpecificBeforeWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	specific := newTestHandler("QnaCreated")
	wildcard := newTestHandler()

	registry.Register(wildcard)
	registry.Register(specific, "QnaCreated")

	handlers := registry.GetHandlers("QnaCreated")
	assert.Len(t, handlers, 2)
	assert.Equal(t, specific, handlers[0])
	assert.Equal(t, wildcard, handlers[1])

	handlers = registry.GetHandlers("QnaClosed")
	assert.Len(t, handlers, 1)
	assert.Equal(t, wildcard, handlers[0])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	handler1 := newTestHandler("QnaCreated")
	handler2 := newTestHandler("QnaCreated")
	wildcard := newTestHandler()

	registry.Register(handler1, "QnaCreated")
	registry.Register(handler2, "QnaCreated")
	registry.Register(wildcard)

	registry.Unregister(handler1)
	registry.Unregister(wildcard)

	handlers := registry.GetHandlers("QnaCreated")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler2, handlers[0])
	assert.Empty(t, registry.GetHandlers("QnaClosed"))
}

func TestHandlerRegistry_GetAllHandlers_NoDuplicates(t *testing.T) {
	registry := NewHandlerRegistry()
	multi := newTestHandler("QnaCreated", "QnaClosed")
	single := newTestHandler("QnaReplyCreated")
	wildcard := newTestHandler()

	registry.Register(multi, "QnaCreated", "QnaClosed")
	registry.Register(single, "QnaReplyCreated")
	registry.Register(wildcard)

	assert.Len(t, registry.GetAllHandlers(), 3)
}
