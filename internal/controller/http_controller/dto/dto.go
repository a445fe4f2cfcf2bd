package dto

type CreateDB struct {
	Name string `json:"name"`
}

type APIKey struct {
	APIKey string `json:"apikey"`
}

type Exists struct {
	Exists bool `json:"exists"`
}

// KeyRequest carries every db-scoped body; unused fields stay zero.
type KeyRequest struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	TTL    int64  `json:"ttl"`
	Delta  int64  `json:"delta"`
	APIKey string `json:"apikey"`
}

type Value struct {
	Value string `json:"value"`
}

type IncrResult struct {
	Value int64 `json:"value"`
}

type Ok struct {
	Ok bool `json:"ok"`
}

type Queue struct {
	Name  string `json:"name"`
	Limit int64  `json:"limit"`
	Value string `json:"value"`
}
