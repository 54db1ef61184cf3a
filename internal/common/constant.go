package common

// SessionTokenHeaderName is the HTTP header used to carry the session token
// on authenticated requests.
const SessionTokenHeaderName = "Authorization"

// SessionTokenCookieName is the cookie used to carry the session token when
// the client prefers cookie-based sessions.
const SessionTokenCookieName = "session_token"
