package auth

import "github.com/edgard/yugram/internal/tdlib"

// State is the authorization state tracked by the Authorizer.
type State string

// Tracked states. StateNone is the state before the first notification;
// StateUnknown follows a notification this package does not handle.
const (
	StateNone           State = "none"
	StateWaitParameters State = "wait_parameters"
	StateWaitPhone      State = "wait_phone_number"
	StateWaitCode       State = "wait_code"
	StateWaitPassword   State = "wait_password"
	StateReady          State = "ready"
	StateLoggingOut     State = "logging_out"
	StateClosing        State = "closing"
	StateClosed         State = "closed"
	StateUnknown        State = "unknown"
)

// states maps TDLib authorization states to tracked states.
var states = map[tdlib.AuthorizationState]State{
	tdlib.AuthorizationStateWaitTdlibParameters: StateWaitParameters,
	tdlib.AuthorizationStateWaitPhoneNumber:     StateWaitPhone,
	tdlib.AuthorizationStateWaitCode:            StateWaitCode,
	tdlib.AuthorizationStateWaitPassword:        StateWaitPassword,
	tdlib.AuthorizationStateReady:               StateReady,
	tdlib.AuthorizationStateLoggingOut:          StateLoggingOut,
	tdlib.AuthorizationStateClosing:             StateClosing,
	tdlib.AuthorizationStateClosed:              StateClosed,
}

// AllStates lists every tracked state.
var AllStates = []State{
	StateNone, StateWaitParameters, StateWaitPhone, StateWaitCode, StateWaitPassword,
	StateReady, StateLoggingOut, StateClosing, StateClosed, StateUnknown,
}
