// Package lookup talks to the Merriam-Webster collegiate dictionary and
// thesaurus APIs. A Client performs one word lookup at a time with
// bounded retries and exponential backoff, and reports every outcome as
// a Result value instead of an error. The client also owns the session
// call counter used for rate-limit bookkeeping.
package lookup
