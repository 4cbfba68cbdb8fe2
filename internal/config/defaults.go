package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.config/docrag",
			SQLiteFile: "documents.sqlite",
		},
		LLM: LLMConfig{
			Provider:   "azure",
			BaseURL:    "https://ai-openai-swc-service.openai.azure.com/",
			Model:      "gpt-4o-mini",
			APIVersion: "2024-06-01",
		},
		Sources: SourcesConfig{
			ZaPF: ListingConfig{
				ListURL: "https://zapfev.de/zapf/resolutionen/",
				BaseURL: "",
			},
			JDPG: ListingConfig{
				ListURL: "https://www.dpg-physik.de/vereinigungen/fachuebergreifend/ak/akjdpg/jdpg-interner-bereich/uebersicht-aller-internen-dokumente",
				BaseURL: "https://www.dpg-physik.de",
			},
		},
		Retrieval: RetrievalConfig{
			DefaultDocs:     8,
			PerKeywordLimit: 5,
			TrimKeywords:    true,
		},
		Generation: GenerationConfig{
			Temperature: 0.1,
			MaxTokens:   1000,
		},
		HTTP: HTTPConfig{
			TimeoutSec: 60,
			UserAgent:  "docrag/1.0",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8501,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Environment: "development",
		},
	}
}
