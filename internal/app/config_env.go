package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// apiKeyFromEnv prefers LLM_API_KEY and falls back to GEMINI_API_KEY.
func apiKeyFromEnv() string {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("GEMINI_API_KEY")
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = apiKeyFromEnv()
	}
	setString(&cfg.CacheDir, "DOCLENS_CACHE_DIR")
	setString(&cfg.AnalyticsDB, "DOCLENS_ANALYTICS_DB")
	setString(&cfg.Language, "DOCLENS_LANGUAGE")
	setString(&cfg.Addr, "DOCLENS_ADDR")

	if cfg.RPM == 0 {
		if n, ok := envInt("DOCLENS_RPM"); ok {
			cfg.RPM = n
		}
	}
	if cfg.CacheMaxAge == 0 {
		if d, ok := envDuration("DOCLENS_CACHE_MAX_AGE"); ok {
			cfg.CacheMaxAge = d
		}
	}

	setBool := func(dst *bool, key string) {
		if *dst {
			return
		}
		if v, ok := envBool(key); ok && v {
			*dst = true
		}
	}
	setBool(&cfg.ClampRisk, "DOCLENS_CLAMP_RISK")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.LLMCacheOnly, "LLM_CACHE_ONLY")
}

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. Used so env beats the config file while flags stay highest.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.LLMBaseURL, "LLM_BASE_URL")
	override(&cfg.LLMModel, "LLM_MODEL")
	if v := apiKeyFromEnv(); v != "" {
		cfg.LLMAPIKey = v
	}
	override(&cfg.CacheDir, "DOCLENS_CACHE_DIR")
	override(&cfg.AnalyticsDB, "DOCLENS_ANALYTICS_DB")
	override(&cfg.Language, "DOCLENS_LANGUAGE")
	override(&cfg.Addr, "DOCLENS_ADDR")
	if n, ok := envInt("DOCLENS_RPM"); ok {
		cfg.RPM = n
	}
	if d, ok := envDuration("DOCLENS_CACHE_MAX_AGE"); ok {
		cfg.CacheMaxAge = d
	}
	for key, dst := range map[string]*bool{
		"DOCLENS_CLAMP_RISK": &cfg.ClampRisk,
		"VERBOSE":            &cfg.Verbose,
		"CACHE_STRICT_PERMS": &cfg.CacheStrictPerms,
		"LLM_CACHE_ONLY":     &cfg.LLMCacheOnly,
	} {
		if v, ok := envBool(key); ok {
			*dst = v
		}
	}
}

func envInt(key string) (int, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

// envBool understands 1/true/yes/on and 0/false/no/off. Anything else is
// treated as unset.
func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
