// Package validation provides a fluent field validator and tag-based struct
// validation, both producing AppErrors with per-field detail.
package validation
