package iklink

// Options tunes candidate sampling and linking.
type Options struct {
	// CandidateQuota is how many candidates each waypoint collects.
	CandidateQuota int `yaml:"candidate_quota"`
	// ClusterTolerance is the joint-space neighborhood radius used to deduplicate propagated
	// configurations.
	ClusterTolerance float64 `yaml:"cluster_tolerance"`
	// ClusterMinPoints is the neighbor count, the point itself included, that makes a point a
	// cluster core.
	ClusterMinPoints int `yaml:"cluster_min_points"`
	// MaxReachFailures stops sampling a waypoint after that many reach failures in a row. Zero
	// retries forever.
	MaxReachFailures int `yaml:"max_reach_failures"`
	// RandomSeed seeds the random restarts of reach queries.
	RandomSeed int64 `yaml:"random_seed"`
	// Parallel spreads each linking step over multiple goroutines.
	Parallel bool `yaml:"parallel"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		CandidateQuota:   300,
		ClusterTolerance: 0.05,
		ClusterMinPoints: 2,
		RandomSeed:       1,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.CandidateQuota <= 0 {
		o.CandidateQuota = def.CandidateQuota
	}
	if o.ClusterTolerance <= 0 {
		o.ClusterTolerance = def.ClusterTolerance
	}
	if o.ClusterMinPoints <= 0 {
		o.ClusterMinPoints = def.ClusterMinPoints
	}
	if o.MaxReachFailures < 0 {
		o.MaxReachFailures = 0
	}
	return o
}
