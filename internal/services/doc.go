// Package services provides shared plumbing for shipwright's external tool
// clients: the error taxonomy used to classify failures, and context
// carriers that thread target and run identity into structured logs.
package services
