package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealmind/mealmind-backend/internal/mocks"
	"github.com/mealmind/mealmind-backend/internal/service"
)

func TestResolveWithoutModelUsesFallback(t *testing.T) {
	r := service.NewTimezoneResolver(nil, nil, "UTC")
	loc := r.Resolve(context.Background(), "Berlin")
	assert.Equal(t, "UTC", loc.String())
}

func TestResolveEmptyLocationUsesFallback(t *testing.T) {
	llm := &mocks.LLMClient{Reply: "Europe/Berlin"}
	r := service.NewTimezoneResolver(llm, nil, "UTC")

	loc := r.Resolve(context.Background(), "   ")
	assert.Equal(t, "UTC", loc.String())
	assert.Zero(t, llm.Calls)
}

func TestResolveUsesModelGuess(t *testing.T) {
	llm := &mocks.LLMClient{Reply: "Europe/Berlin"}
	r := service.NewTimezoneResolver(llm, nil, "UTC")

	loc := r.Resolve(context.Background(), "Berlin")
	assert.Equal(t, "Europe/Berlin", loc.String())
	assert.Equal(t, "Berlin", llm.LastPrompt)
}

func TestResolveTrimsQuotedReply(t *testing.T) {
	llm := &mocks.LLMClient{Reply: "\"America/New_York\"\n"}
	r := service.NewTimezoneResolver(llm, nil, "UTC")

	loc := r.Resolve(context.Background(), "NYC")
	assert.Equal(t, "America/New_York", loc.String())
}

func TestResolveRejectsUnknownZone(t *testing.T) {
	llm := &mocks.LLMClient{Reply: "Mars/OlympusMons"}
	r := service.NewTimezoneResolver(llm, nil, "UTC")

	loc := r.Resolve(context.Background(), "Olympus Mons")
	assert.Equal(t, "UTC", loc.String())
}

func TestResolveModelErrorUsesFallback(t *testing.T) {
	llm := &mocks.LLMClient{Err: errors.New("model down")}
	r := service.NewTimezoneResolver(llm, nil, "Europe/Berlin")

	loc := r.Resolve(context.Background(), "somewhere rural")
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestNewTimezoneResolverUnknownFallbackDegradesToUTC(t *testing.T) {
	r := service.NewTimezoneResolver(nil, nil, "Nowhere/Special")
	loc := r.Resolve(context.Background(), "")
	assert.Equal(t, "UTC", loc.String())
}
