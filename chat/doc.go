// Package chat keeps a long-lived many-channel Twitch IRC session alive and
// watches it for gift-subscription notices.
//
// It has two layers:
//   - Dial/Connection: a thin event-loop facade over the IRC client. A
//     connection is joined one channel at a time (each join races a timeout),
//     and then pumped for events: gift notices, a disconnect, or anything
//     else (ignored).
//   - Session: the state machine Disconnected -> Connecting -> JoiningChannels
//     -> Running. EOF is not terminal: the session discards the whole
//     connection object, dials a fresh one, rejoins the same channel list and
//     resumes. Only a failed connect ends the run.
//
// Credentials: the IRC client requires the recipient's login and a user OAuth
// token with chat:read scope (with the "oauth:" prefix).
package chat
