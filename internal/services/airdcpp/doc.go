// Package airdcpp implements the AirDC++ Web API client used to locate and
// queue comic archives on connected hubs.
//
// Authentication uses a bearer token obtained from sessions/authorize and
// cached for the client's lifetime. Searching follows the API's three-step
// flow: create a search instance, fire a hub search (trying cbz, then cbr,
// then unrestricted extension filters), and poll the instance's results with
// a growing delay. Ranking is this client's responsibility: results are
// filtered to comic archives and cbz is preferred over cbr; consumers take
// the first result as the best match.
package airdcpp
