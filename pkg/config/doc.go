// Package config provides configuration management for the insurance
// assistant.
//
// Configuration is loaded from a YAML file with environment variable
// overrides:
//
//	cfg, err := config.LoadConfig("assistant.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("assistant.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ASSISTANT_SECTION_FIELD:
//
//   - ASSISTANT_PLANS_DIRECTORY overrides plans.directory
//   - ASSISTANT_COLLABORATOR_API_KEY overrides collaborator.api_key
//   - ASSISTANT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// A .env file in the working directory is read before the overrides are
// applied. Variables already present in the process environment take
// precedence over the file.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	plans:
//	  directory: "./plans"
//	  watch: true
//
//	sessions:
//	  ttl: "30m"
//	  sweep_schedule: "@every 1m"
//	  snapshots:
//	    enabled: true
//	    path: "data/sessions.db"
//
//	eligibility:
//	  senior_age: 60
//
//	collaborator:
//	  provider: "openai"
//	  model: "gpt-4o-mini"
//	  timeout: "10s"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//	  metrics:
//	    enabled: true
//	    address: "127.0.0.1:9090"
//
// # Validation
//
// Validate collects every failing field into a ValidationError so all
// problems are reported at once:
//
//	var verr config.ValidationError
//	if errors.As(err, &verr) {
//	    for _, fe := range verr.Errors {
//	        fmt.Println(fe.Field, fe.Message)
//	    }
//	}
package config
