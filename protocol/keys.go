// Package protocol defines the envelopes exchanged between the orchestrator
// and a unit-running application: run requests, run results, discovery
// queries and the data events a running unit reports.
//
// Key strings are wire format. Both applications must agree on them byte for
// byte, so they never change between versions; new fields get new keys.
package protocol

import "github.com/xiaot623/gogo/unitlink/envelope"

// Discriminators
const (
	// LaunchUnitAction routes a run request to the unit-running application.
	LaunchUnitAction = "com.eidu.integration.LAUNCH_LEARNING_UNIT"

	// QueryUnitIDsCategory marks a discovery query.
	QueryUnitIDsCategory = "com.eidu.content.query.QUERY_CONTENT_IDS"
)

// Request keys
const (
	KeyVersion                   = envelope.KeyVersion
	KeyUnitID                    = "learningUnitId"
	KeyRunID                     = "learningUnitRunId"
	KeyLearnerID                 = "learnerId"
	KeyOwnerID                   = "schoolId"
	KeyStage                     = "stage"
	KeyRemainingForegroundTimeMs = "remainingForegroundTimeInMs"
	KeyInactivityTimeoutMs       = "inactivityTimeoutInMs"
)

// Result keys
const (
	KeyResultType           = "resultType"
	KeyScore                = "score"
	KeyForegroundDurationMs = "foregroundDurationInMs"
	KeyAdditionalData       = "additionalData"
	KeyErrorDetails         = "errorDetails"
	KeyItems                = "items"
)

// KeyUnitIDs carries the discovery result list.
const KeyUnitIDs = "contentIds"

// Ptr returns a pointer to v, for filling optional fields.
func Ptr[T any](v T) *T { return &v }
