package dto

type CreateDB struct {
	Name string `json:"name"`
}

type APIKey struct {
	APIKey *string `json:"apikey"`
}

type Exists struct {
	Exists *bool `json:"exists"`
}

type Set struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	TTL    int64  `json:"ttl"`
	APIKey string `json:"apikey,omitempty"`
}

type Get struct {
	Key    string `json:"key"`
	APIKey string `json:"apikey,omitempty"`
}

type Value struct {
	Value *string `json:"value"`
}

type Ok struct {
	Ok *bool `json:"ok"`
}

type Incr struct {
	Key    string `json:"key"`
	Delta  int64  `json:"delta"`
	APIKey string `json:"apikey,omitempty"`
}

type IncrResult struct {
	Value *int64 `json:"value"`
}

type Delete struct {
	Key    string `json:"key"`
	APIKey string `json:"apikey,omitempty"`
}

type QueueCreate struct {
	Name  string `json:"name"`
	Limit int64  `json:"limit"`
}

type QueuePush struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type QueueName struct {
	Name string `json:"name"`
}

type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
