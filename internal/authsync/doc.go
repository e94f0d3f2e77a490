// Package authsync revalidates the primary session when the app returns
// to the foreground or another context changes auth storage.
//
// Both triggers converge on one refresh primitive. Deduplicating an
// in-flight refresh belongs to the PrimaryClient; Dedup adds that to
// clients that lack it. Failures are logged and the user stays
// soft-expired.
package authsync
