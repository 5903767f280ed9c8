package airdcpp

// Result is a single search hit returned by the hub search. OnDisk and
// InQueue reflect the hub's dupe report: the file already exists in the local
// share or sits in the download queue.
type Result struct {
	ID      int64
	Name    string
	Path    string
	Size    int64
	TTH     string
	OnDisk  bool
	InQueue bool
}

type authorizeRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	MaxInactivity int    `json:"max_inactivity"`
}

type authorizeResponse struct {
	AuthToken string `json:"auth_token"`
}

type searchInstanceRequest struct {
	Expiration int `json:"expiration"`
}

type searchInstanceResponse struct {
	ID int64 `json:"id"`
}

type hubSearchQuery struct {
	Pattern        string   `json:"pattern"`
	FileExtensions []string `json:"file_extensions,omitempty"`
}

type hubSearchRequest struct {
	Query hubSearchQuery `json:"query"`
}

type hubSearchResponse struct {
	SearchID int64 `json:"search_id"`
}

type searchResult struct {
	ID   int64     `json:"id"`
	Name string    `json:"name"`
	Path string    `json:"path"`
	Size int64     `json:"size"`
	TTH  string    `json:"tth"`
	Dupe *dupeInfo `json:"dupe"`
}

type dupeInfo struct {
	ID string `json:"id"`
}

type enqueueRequest struct {
	TargetName string `json:"target_name"`
	Size       int64  `json:"size"`
	TTH        string `json:"tth"`
}
