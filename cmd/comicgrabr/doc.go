// Command comicgrabr keeps a comic pull list in sync with League of Comic
// Geeks and queues the day's releases for download through AirDC++.
package main
