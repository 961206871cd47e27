package histogram

// Bucket is one time bucket and the number of records inside it
type Bucket struct {
	// Start epoch milliseconds of the bucket start
	Start int64 `json:"start"`
	Count int   `json:"count"`
}

// Response is the histogram of one result set
type Response struct {
	Buckets       []Bucket `json:"buckets"`
	MinTs         int64    `json:"minTs"`
	MaxTs         int64    `json:"maxTs"`
	BucketSeconds int      `json:"bucketSeconds"`
	Skipped       int      `json:"skipped"` // Records without a time value
}

// Bounds limits the histogram range, e.g. to the boundaries of active date
// filters. Nil ends fall back to the data range.
type Bounds struct {
	After  *int64 // Epoch milliseconds
	Before *int64
}
