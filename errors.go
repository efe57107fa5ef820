package detest

import "errors"

// Sentinel errors wrapped as a Failure's Cause. These never escape Run on
// their own; they are always the Cause field of an InternalError or
// FailureInNoTest Failure.
var (
	errUnknownAction   = errors.New("detest: action of unrecognized concrete type reached the driver")
	errBlockedInNoTest = errors.New("detest: a NoTest body attempted to block or terminated abnormally")
)
