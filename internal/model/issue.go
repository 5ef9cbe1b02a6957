package model

// TrackerIssue is the external issue created for a change request. The relay
// creates it once and never updates or deletes it.
type TrackerIssue struct {
	URL    string
	Number int
}
