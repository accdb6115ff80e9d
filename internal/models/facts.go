package models

// FactKey names one remembered fact about the user.
type FactKey string

const (
	FactUserName FactKey = "user_name"
	FactLikes    FactKey = "likes"
	FactLocation FactKey = "location"
	FactJob      FactKey = "job"
)

// FactReader is read-only access to remembered facts.
type FactReader interface {
	Get(key FactKey) (string, bool)
	Facts() map[FactKey]string
}
