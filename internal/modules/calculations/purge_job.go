package calculations

// PurgeJob deletes expired report rows. The read path treats expired rows as
// misses but leaves them in place, so without a periodic purge cache.db
// grows without bound.
type PurgeJob struct {
	cache *Cache
}

// NewPurgeJob creates a purge job for the given cache.
func NewPurgeJob(cache *Cache) *PurgeJob {
	return &PurgeJob{cache: cache}
}

// Name identifies the job in scheduler logs.
func (j *PurgeJob) Name() string { return "cache_purge" }

// Run removes all expired cache entries.
func (j *PurgeJob) Run() error {
	_, err := j.cache.PurgeExpired()
	return err
}
