// Package session holds each user's two uploaded workbooks between requests.
// Every interaction re-runs the report pipeline from these bytes; nothing else
// is kept.
package session
