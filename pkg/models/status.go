package models

// ResultStatus is the one-word outcome shown on progress lines
type ResultStatus string

const (
	ResultFound ResultStatus = "FOUND" // At least one document saved
	ResultMiss  ResultStatus = "MISS"  // Processed but nothing saved
	ResultSkip  ResultStatus = "SKIP"  // Output already existed, no network work
)

// String implements fmt.Stringer for logging
func (s ResultStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known value
func (s ResultStatus) IsValid() bool {
	switch s {
	case ResultFound, ResultMiss, ResultSkip:
		return true
	}
	return false
}

// SiteState tracks where a restaurant sits in the Site Processor pipeline
type SiteState string

const (
	SiteStateResumedFromExisting SiteState = "resumed_from_existing" // Terminal: output already on disk
	SiteStateRobotsBlocked       SiteState = "robots_blocked"        // Terminal: homepage disallowed
	SiteStateHomepageUnavailable SiteState = "homepage_unavailable"  // Terminal: homepage unreachable/non-HTML
	SiteStateDiscovering         SiteState = "discovering"           // Generating candidates
	SiteStateFetchingCandidates  SiteState = "fetching_candidates"   // Walking ranked candidates
	SiteStateCompleted           SiteState = "completed"             // Terminal: normal completion
)

// String implements fmt.Stringer for logging
func (s SiteState) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}
