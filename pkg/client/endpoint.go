package client

// Endpoint describes one remote query function. Generated endpoint wrappers
// declare an Endpoint and pass their arguments to Client.Call.
type Endpoint struct {
	// Name identifies the function, used for cache keys and metrics (e.g. "price_daily")
	Name string

	// Path is the URL path under /data/v1 (e.g. "/price/daily")
	Path string

	// Module is reported in the client-info header
	Module string

	// Fields is the default field list, also the header of an empty result
	Fields []string

	// StringColumns are decoded as strings regardless of content
	StringColumns []string
}
