package config_test

import (
	"errors"
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/config"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	llmmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/mock"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
	ttsmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/tts/mock"
)

func TestRegistryCreateLLM(t *testing.T) {
	t.Parallel()

	r := config.NewRegistry()
	var gotEntry config.ProviderEntry
	r.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		gotEntry = entry
		return &llmmock.Provider{}, nil
	})

	p, err := r.CreateLLM(config.ProviderEntry{Name: "openai", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("CreateLLM: %v", err)
	}
	if p == nil {
		t.Fatal("nil provider")
	}
	if gotEntry.Model != "gpt-4o-mini" {
		t.Errorf("factory entry = %+v", gotEntry)
	}
}

func TestRegistryUnregisteredName(t *testing.T) {
	t.Parallel()

	r := config.NewRegistry()
	if _, err := r.CreateLLM(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := r.CreateSTT(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := r.CreateTTS(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	t.Parallel()

	r := config.NewRegistry()
	first := &ttsmock.Provider{}
	second := &ttsmock.Provider{}
	r.RegisterTTS("elevenlabs", func(config.ProviderEntry) (tts.Provider, error) { return first, nil })
	r.RegisterTTS("elevenlabs", func(config.ProviderEntry) (tts.Provider, error) { return second, nil })

	p, err := r.CreateTTS(config.ProviderEntry{Name: "elevenlabs"})
	if err != nil {
		t.Fatalf("CreateTTS: %v", err)
	}
	if p != second {
		t.Error("later registration did not overwrite earlier one")
	}
}
