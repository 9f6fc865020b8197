package config

// ConfigPath is the default config location relative to the repo root.
const ConfigPath = "services/archive/config.yaml"
