package config

import "sync"

// Settings is the per-session application state exposed to clients: which
// LLM provider backs the gateway and which stock-image sources are enabled.
// It is a value type; a Store hands out copies, never shared pointers.
type Settings struct {
	LLMProvider    string   `json:"llmProvider"`
	GeminiAPIKey   string   `json:"geminiApiKey"`
	OpenAIAPIKey   string   `json:"openaiApiKey"`
	Model          string   `json:"model"`
	ImageModel     string   `json:"imageModel"`
	UnsplashAPIKey string   `json:"unsplashApiKey"`
	ImageProviders []string `json:"imageProviders"`
}

// SettingsFromConfig seeds initial settings from the loaded config file.
func SettingsFromConfig(cfg *Config) Settings {
	s := Settings{
		LLMProvider:    cfg.AI.Provider,
		Model:          cfg.AI.Model,
		ImageModel:     cfg.AI.ImageModel,
		UnsplashAPIKey: cfg.Images.UnsplashAPIKey,
		ImageProviders: append([]string(nil), cfg.Images.Providers...),
	}
	switch cfg.AI.Provider {
	case "openai":
		s.OpenAIAPIKey = cfg.AI.APIKey
	default:
		s.GeminiAPIKey = cfg.AI.APIKey
	}
	if len(s.ImageProviders) == 0 {
		s.ImageProviders = []string{"Unsplash", "Pexels"}
	}
	return s
}

// Store holds versioned settings. Update replaces the whole snapshot and
// bumps the version; there is no in-place mutation.
type Store struct {
	mu      sync.RWMutex
	current Settings
	version int
}

func NewStore(initial Settings) *Store {
	return &Store{current: initial, version: 1}
}

// Get returns the current snapshot and its version.
func (s *Store) Get() (Settings, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.current
	cp.ImageProviders = append([]string(nil), s.current.ImageProviders...)
	return cp, s.version
}

// Update derives a new snapshot from the current one and installs it.
func (s *Store) Update(fn func(Settings) Settings) (Settings, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = fn(s.current)
	s.version++
	cp := s.current
	cp.ImageProviders = append([]string(nil), s.current.ImageProviders...)
	return cp, s.version
}
