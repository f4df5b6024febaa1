// Package server provides HTTP routing, middleware, the browser OAuth flow,
// and the per-session websocket progress channel.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support;
// [BasicRouter] implements it on [http.ServeMux] with method filtering.
// [Middleware] wraps handlers in the standard Go pattern, last added
// innermost.
//
// # Authorization
//
// Two flows share the same OAuth2 config. [OAuthHandler] serves the CLI
// flow: a temporary localhost server receives one authorization-code
// callback and hands the token back over a channel. [WebAuthHandler] serves
// the browser flow: /login, /callback and /refresh_token keep the tokens in
// cookies that the websocket session reads server-side.
//
// # Sessions
//
// [SessionHandler] upgrades /ws/{id} and runs one pipeline engine per
// connection. Inbound messages carry the two pipeline inputs (thread URL,
// then market); outbound messages are the progress events in generation
// order. The connection closes with code 1000 after the terminal event, and
// a client disconnect cancels the session context.
package server
