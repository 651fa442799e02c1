package wamp

// Predefined WAMP URIs used in error and goodbye messages.
//
// https://wamp-proto.org/wamp_latest_ietf.html#name-predefined-uris
const (
	// A peer is not authorized to perform a join, call, register, publish
	// or subscribe.
	ErrNotAuthorized = "wamp.error.not_authorized"

	// A router could not perform a call: no procedure registered under the
	// given URI.
	ErrNoSuchProcedure = "wamp.error.no_such_procedure"

	// A router could not perform an unsubscribe: the subscription is not
	// active.
	ErrNoSuchSubscription = "wamp.error.no_such_subscription"

	// A peer provided an incorrect URI for a realm, topic, or procedure.
	ErrInvalidURI = "wamp.error.invalid_uri"

	// A peer wanted to join a non-existing realm.
	ErrNoSuchRealm = "wamp.error.no_such_realm"

	// Session close reasons, used in GOODBYE and ABORT.
	CloseNormal         = "wamp.close.normal"
	CloseRealm          = "wamp.close.close_realm"
	CloseGoodbyeAndOut  = "wamp.close.goodbye_and_out"
	CloseSystemShutdown = "wamp.close.system_shutdown"
)
