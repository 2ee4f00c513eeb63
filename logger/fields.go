// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package logger

// Structured field names used by the issue/verify pipeline. Keeping them
// here (rather than inline string literals scattered across packages) keeps
// log output greppable across a rotation or an incident.
const (
	FieldKeyID     = "kid"
	FieldReason    = "reason"
	FieldEncrypted = "enc"
)
