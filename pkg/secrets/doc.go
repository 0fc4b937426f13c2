// Package secrets resolves ${secret:name} references in configuration values.
//
// Credentials such as the collaborator API key or a git token can be kept
// out of config.yaml:
//
//	collaborator:
//	  provider: openai
//	  api_key: ${secret:openai-api-key}
//
// A Manager tries its providers in order. FileProvider reads one file per
// secret from a directory, the layout of Kubernetes secret mounts;
// EnvProvider reads an environment variable derived from the name
// ("openai-api-key" becomes ASSISTANT_SECRET_OPENAI_API_KEY).
//
// Resolved values are cached for the lifetime of the Manager and are never
// logged.
package secrets
