// Package domain defines typed identifiers shared across the engine.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (passing an EntityID where a FrameworkID is expected). Parse
// helpers enforce the trust-boundary invariant that IDs are valid, non-nil
// UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "custos/pkg/domain-errors"
)

type (
	// OrganizationID identifies a tenant organization.
	OrganizationID uuid.UUID

	// EntityID identifies a compliance subject (subsidiary, product, unit).
	EntityID uuid.UUID

	// FrameworkID identifies a regulatory framework.
	FrameworkID uuid.UUID

	// ControlID identifies a requirement within a framework.
	ControlID uuid.UUID

	// TaskID identifies a remediation task (base template or generated).
	TaskID uuid.UUID

	// TaskAssignmentID identifies the per-entity instantiation of a task.
	TaskAssignmentID uuid.UUID

	// GapID identifies a detected non-conformity.
	GapID uuid.UUID
)

func (id OrganizationID) String() string   { return uuid.UUID(id).String() }
func (id EntityID) String() string         { return uuid.UUID(id).String() }
func (id FrameworkID) String() string      { return uuid.UUID(id).String() }
func (id ControlID) String() string        { return uuid.UUID(id).String() }
func (id TaskID) String() string           { return uuid.UUID(id).String() }
func (id TaskAssignmentID) String() string { return uuid.UUID(id).String() }
func (id GapID) String() string            { return uuid.UUID(id).String() }

func (id OrganizationID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id EntityID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id FrameworkID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ControlID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id TaskAssignmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id GapID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }

// parseUUID rejects empty strings, malformed UUIDs, and the nil UUID.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseOrganizationID(raw string) (OrganizationID, error) {
	u, err := parseUUID(raw)
	return OrganizationID(u), err
}

func ParseEntityID(raw string) (EntityID, error) {
	u, err := parseUUID(raw)
	return EntityID(u), err
}

func ParseFrameworkID(raw string) (FrameworkID, error) {
	u, err := parseUUID(raw)
	return FrameworkID(u), err
}

func ParseControlID(raw string) (ControlID, error) {
	u, err := parseUUID(raw)
	return ControlID(u), err
}

func ParseTaskID(raw string) (TaskID, error) {
	u, err := parseUUID(raw)
	return TaskID(u), err
}
