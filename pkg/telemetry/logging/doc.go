// Package logging provides structured logging with PII redaction.
//
// # Overview
//
// New returns a standard *slog.Logger whose handler:
//   - writes JSON, text or console output
//   - appends request, session, plan and trace IDs found in the context
//   - masks personal data and credentials when RedactPII is enabled
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithSession(ctx, sessionID)
//	logger.InfoContext(ctx, "stage transition", "from", "data_gathering", "to", "plan_analysis")
//
// # PII Redaction
//
//   - API keys: sk-abc123xyz... → sk-***
//   - Emails: asha@example.com → ***@***
//   - Aadhaar: 1234 5678 9012 → XXXX-XXXX-XXXX
//   - PAN: ABCDE1234F → XXXXX0000X
//   - Mobile numbers: +91 9876543210 → +91-XXXXXXXXXX
//
// Values under keys such as patient_name, utterance, token or api_key are
// replaced by their length.
package logging
