package domain

import "fmt"

// UnknownDAOError means the DAO has no configured compensation versions.
// Fatal to the calling request, never to the process.
type UnknownDAOError struct {
	DAOID string
}

func (e UnknownDAOError) Error() string {
	return fmt.Sprintf("no compensation versions configured for dao %q", e.DAOID)
}

// MalformedStatsError marks a single delegate/month record that could not be
// parsed. The batch continues; callers surface a count of skipped records.
type MalformedStatsError struct {
	Delegate string
	Month    MonthKey
	Err      error
}

func (e MalformedStatsError) Error() string {
	return fmt.Sprintf("malformed stats for delegate %s in %s: %v", e.Delegate, e.Month, e.Err)
}

func (e MalformedStatsError) Unwrap() error {
	return e.Err
}

// UpstreamFetchError marks a failed fetch of one month's data. The aggregator
// folds it into an unavailable month and keeps going on sibling months.
type UpstreamFetchError struct {
	DAOID string
	Month MonthKey
	Err   error
}

func (e UpstreamFetchError) Error() string {
	return fmt.Sprintf("failed to fetch delegate stats for dao %s in %s: %v", e.DAOID, e.Month, e.Err)
}

func (e UpstreamFetchError) Unwrap() error {
	return e.Err
}
