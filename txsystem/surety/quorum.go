package surety

// BootstrapSize is the number of airlines admitted without voting.
const BootstrapSize = 4

// quorumReached reports whether the votes make at least half of the registered airlines.
func quorumReached(votes, registered uint64) bool {
	return votes*2 >= registered
}

// votingRequired reports whether a new airline has to be voted in.
func votingRequired(registered uint64) bool {
	return registered >= BootstrapSize
}
