package vocab

// DefaultTable returns the built-in domain vocabulary. Classes mirror the
// interview domains the assistant is used for; patterns are matched
// case-insensitively and the matched phrase itself becomes the topic key.
func DefaultTable() Table {
	return Table{Classes: []Class{
		{
			Name:   "storage",
			Weight: 1.0,
			Patterns: []string{
				`(?i)\b(?:database|sql|nosql|postgres(?:ql)?|mysql|mongodb|redis|cassandra|dynamodb|elasticsearch)\b`,
				`(?i)\b(?:sharding|replication|denormalization|b-tree|write-ahead log|key-value store|object storage)\b`,
			},
		},
		{
			Name:   "architecture",
			Weight: 1.0,
			Patterns: []string{
				`(?i)\b(?:microservices?|monolith|event-driven|message queue|api gateway|load balanc(?:er|ing)|service mesh)\b`,
				`(?i)\b(?:pub[/-]?sub|rest api|grpc|graphql|websockets?|circuit breaker|idempotency)\b`,
			},
		},
		{
			Name:   "scalability",
			Weight: 1.0,
			Patterns: []string{
				`(?i)\b(?:horizontal|vertical) scaling\b`,
				`(?i)\b(?:scalab(?:le|ility)|throughput|latency|caching|cache invalidation|cdn|rate limit(?:ing)?)\b`,
				`(?i)\b(?:partition(?:ing)?|consistent hashing|eventual consistency|strong consistency|cap theorem)\b`,
			},
		},
		{
			Name:   "algorithms",
			Weight: 1.0,
			Patterns: []string{
				`(?i)\b(?:binary search|hash (?:table|map)|linked list|dynamic programming|recursion|backtracking|memoization)\b`,
				`(?i)\b(?:graph traversal|breadth-first|depth-first|two pointers|sliding window|priority queue|binary tree|heap sort|quicksort|merge sort)\b`,
				`(?i)\bO\([^)]{1,20}\)`,
			},
		},
		{
			Name:   "infrastructure",
			Weight: 1.0,
			Patterns: []string{
				`(?i)\b(?:kubernetes|docker|containers?|terraform|serverless|lambda)\b`,
				`(?i)\b(?:aws|gcp|azure|ci/cd|observability|autoscaling|virtual machines?)\b`,
			},
		},
		{
			Name:   "metrics",
			Weight: 1.0,
			Patterns: []string{
				`(?i)\b\d+(?:\.\d+)?\s?(?:qps|rps|tps|ms|gb|tb|pb|mb)\b`,
				`(?i)\b\d+(?:\.\d+)?\s?(?:million|billion|thousand)\s?(?:users|requests|events|records)?\b`,
			},
		},
	}}
}

// Default returns the compiled built-in matcher.
func Default() *RegexMatcher {
	return MustCompile(DefaultTable())
}
