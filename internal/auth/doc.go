// Package auth provides registration, login and session handling.
//
// Accounts are keyed by lower-cased email. Passwords are hashed by a
// PasswordHasher chosen through configuration:
//
//	AUTH_PASSWORD_SCHEME=sha256  # Default: hex(sha256(password + salt))
//	AUTH_PASSWORD_SALT=<string>  # Application-wide salt for sha256
//	AUTH_PASSWORD_SCHEME=bcrypt  # Per-user salt, AUTH_BCRYPT_COST rounds
//
// Sessions last 30 days from creation. The token of the session to resume is
// kept in a rememberme.Store: a file for the CLI, a cookie or Bearer header
// for HTTP clients. Expired sessions resolve to "no session" and only clear
// that pointer; the purge task removes the rows later.
//
// # Usage
//
//	svc := auth.NewService(usersRepo, hasher)
//	identity, err := svc.Login(email, password)
//
//	sessions := auth.NewSessionService(sessionsRepo, usersRepo, rememberme.NewFileStore(path))
//	token, err := sessions.CreateSession(identity.Email)
//	current, err := sessions.CurrentSession() // nil when nothing to resume
//
// In HTTP handlers:
//
//	router.Use(middleware.Handler())
//	identity := auth.GetIdentity(c) // nil when no live session
package auth
