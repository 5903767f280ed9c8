// Package lcg downloads and parses League of Comic Geeks pull-list exports.
//
// The site has no API for pulls, so the client drives the regular login form:
// fetch the login page, lift the CSRF token out of it, post the credentials,
// then download the member export over the authenticated session. The export
// is parsed as CSV into release records; rows the parser cannot make sense of
// are skipped with a warning rather than failing the whole import.
package lcg
